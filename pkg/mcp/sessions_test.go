package mcp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawbridge-dev/drawbridge/pkg/schema"
)

func TestSessionRegistryPutTake(t *testing.T) {
	r := newSessionRegistry(time.Minute)
	sess := schema.NewSession("input")

	r.Put(sess)

	got, ok := r.Take(sess.ID)
	require.True(t, ok)
	assert.Same(t, sess, got)

	// Take consumes the entry.
	_, ok = r.Take(sess.ID)
	assert.False(t, ok)
}

func TestSessionRegistryMissingID(t *testing.T) {
	r := newSessionRegistry(time.Minute)
	_, ok := r.Take("nope")
	assert.False(t, ok)
}

func TestSessionRegistryExpiry(t *testing.T) {
	r := newSessionRegistry(10 * time.Millisecond)
	sess := schema.NewSession("input")
	r.Put(sess)

	time.Sleep(20 * time.Millisecond)

	_, ok := r.Take(sess.ID)
	assert.False(t, ok)
}
