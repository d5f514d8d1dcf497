package mermaid

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/drawbridge-dev/drawbridge/internal/llm"
	"github.com/drawbridge-dev/drawbridge/pkg/schema"
)

func TestLadderValidSourcePassesThrough(t *testing.T) {
	source := "flowchart TD\n    A --> B"
	l := NewLadder(nil, nil)

	ok, out, status := l.Run(context.Background(), source, schema.DiagramFlowchart)

	assert.True(t, ok)
	assert.Equal(t, source, out)
	assert.Equal(t, StatusValid, status)
}

func TestLadderStructuralRungFixesWithoutCompleter(t *testing.T) {
	broken := "erDiagram\n    CUSTOMER {{\n        int id\n    }}"
	l := NewLadder(nil, nil)

	ok, out, status := l.Run(context.Background(), broken, schema.DiagramER)

	assert.True(t, ok)
	assert.Equal(t, StatusFixedStructural, status)
	assert.True(t, Validate(out, schema.DiagramER).Valid)
}

func TestLadderAssistedRung(t *testing.T) {
	// Wrong opener: nothing the structural rung can do.
	broken := "graph TD\n    A --> B"
	completer := llm.CompleterFunc(func(_ context.Context, prompt string) (string, error) {
		// The repair prompt must carry the broken code and the reason.
		assert.Contains(t, prompt, "graph TD")
		return "```mermaid\nflowchart TD\n    A --> B\n```", nil
	})
	l := NewLadder(completer, nil)

	ok, out, status := l.Run(context.Background(), broken, schema.DiagramFlowchart)

	assert.True(t, ok)
	assert.Equal(t, StatusFixedAssisted, status)
	assert.True(t, Validate(out, schema.DiagramFlowchart).Valid)
}

func TestLadderPostPassRepairsAssistedOutput(t *testing.T) {
	// Wrong opener, so the structural rung alone cannot resolve it.
	broken := "entity diagram\n    CUSTOMER {\n        int id\n    }"
	// The model fixes the opener but reintroduces doubled braces, which
	// the final structural pass can still collapse.
	completer := llm.CompleterFunc(func(_ context.Context, _ string) (string, error) {
		return "erDiagram\n    CUSTOMER {{\n        int id\n    }}", nil
	})
	l := NewLadder(completer, nil)

	ok, out, status := l.Run(context.Background(), broken, schema.DiagramER)

	assert.True(t, ok)
	assert.Equal(t, StatusFixedAssisted, status)
	assert.True(t, Validate(out, schema.DiagramER).Valid)
}

func TestLadderUnresolvedStillReturnsBestEffort(t *testing.T) {
	broken := "graph TD\n    A --> B"

	t.Run("completer error", func(t *testing.T) {
		completer := llm.CompleterFunc(func(_ context.Context, _ string) (string, error) {
			return "", errors.New("service unavailable")
		})
		l := NewLadder(completer, nil)

		ok, out, status := l.Run(context.Background(), broken, schema.DiagramFlowchart)

		assert.False(t, ok)
		assert.Equal(t, StatusUnresolved, status)
		assert.NotEmpty(t, strings.TrimSpace(out))
	})

	t.Run("completer returns still-broken text", func(t *testing.T) {
		completer := llm.CompleterFunc(func(_ context.Context, _ string) (string, error) {
			return "still not a diagram", nil
		})
		l := NewLadder(completer, nil)

		ok, out, status := l.Run(context.Background(), broken, schema.DiagramFlowchart)

		assert.False(t, ok)
		assert.Equal(t, StatusUnresolved, status)
		assert.NotEmpty(t, strings.TrimSpace(out))
	})

	t.Run("no completer configured", func(t *testing.T) {
		l := NewLadder(nil, nil)

		ok, out, status := l.Run(context.Background(), broken, schema.DiagramFlowchart)

		assert.False(t, ok)
		assert.Equal(t, StatusUnresolved, status)
		assert.NotEmpty(t, strings.TrimSpace(out))
	})
}
