package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawbridge-dev/drawbridge/pkg/schema"
)

func newTestStore(t *testing.T) *LibSQLStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewLibSQLStore(context.Background(), "file:"+dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func completedSession(input string) *schema.Session {
	s := schema.NewSession(input)
	s.Intent = schema.NeutralIntent()
	s.Suggestions = []schema.Suggestion{schema.GenericSuggestion()}
	_ = s.Select(schema.DiagramFlowchart)
	s.DiagramSource = "flowchart TD\n    A --> B"
	s.Recommendations = []string{"add more detail"}
	s.Touch("recommendations generated")
	return s
}

func TestArchiveAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sess := completedSession("order flow")
	require.NoError(t, s.Archive(ctx, sess))

	got, err := s.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.SessionID)
	assert.Equal(t, "order flow", got.UserInput)
	assert.Equal(t, string(schema.DiagramFlowchart), got.SelectedType)
	assert.Equal(t, sess.DiagramSource, got.DiagramSource)
	assert.Equal(t, []string{"add more detail"}, got.Recommendations)
	require.NotNil(t, got.Intent)
	assert.Equal(t, "general", got.Intent.Domain)
	assert.False(t, got.ArchivedAt.IsZero())
}

func TestArchiveUpsertsOnResume(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sess := schema.NewSession("half done")
	sess.Touch("awaiting diagram type selection")
	require.NoError(t, s.Archive(ctx, sess))

	sess.Suggestions = []schema.Suggestion{schema.GenericSuggestion()}
	require.NoError(t, sess.Select(schema.DiagramFlowchart))
	sess.DiagramSource = "flowchart TD\n    A --> B"
	sess.Touch("diagram generated")
	require.NoError(t, s.Archive(ctx, sess))

	got, err := s.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "diagram generated", got.Step)
	assert.Equal(t, sess.DiagramSource, got.DiagramSource)

	records, err := s.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestGetMissingSession(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "no-such-id")
	require.Error(t, err)
	var perr *schema.PipelineError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, schema.ErrCodeNotFound, perr.Code)
}

func TestListRespectsLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Archive(ctx, completedSession("input")))
	}

	records, err := s.List(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	// Non-positive limit falls back to the default.
	records, err = s.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, records, 5)
}

func TestPurge(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Archive(ctx, completedSession("keep me")))

	// Nothing is older than a cutoff in the past.
	n, err := s.Purge(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = s.Purge(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	records, err := s.List(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestArchiveNilSession(t *testing.T) {
	s := newTestStore(t)
	require.Error(t, s.Archive(context.Background(), nil))
}
