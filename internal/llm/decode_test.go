package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawbridge-dev/drawbridge/pkg/schema"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "unfenced input trimmed",
			raw:  "  flowchart TD\n    A --> B  ",
			want: "flowchart TD\n    A --> B",
		},
		{
			name: "mermaid fence",
			raw:  "```mermaid\nflowchart TD\n    A --> B\n```",
			want: "flowchart TD\n    A --> B",
		},
		{
			name: "json fence",
			raw:  "```json\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "bare fence",
			raw:  "```\nflowchart TD\n```",
			want: "flowchart TD",
		},
		{
			name: "prose around the fence is discarded",
			raw:  "Here is your diagram:\n```mermaid\nflowchart TD\n    A --> B\n```\nLet me know!",
			want: "flowchart TD\n    A --> B",
		},
		{
			name: "first line that is not a language tag is kept",
			raw:  "```\nflowchart TD\n    A --> B\n```",
			want: "flowchart TD\n    A --> B",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.raw))
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("fenced json decodes", func(t *testing.T) {
		var p payload
		err := DecodeJSON("```json\n{\"name\": \"order flow\"}\n```", &p)
		require.NoError(t, err)
		assert.Equal(t, "order flow", p.Name)
	})

	t.Run("invalid json reports decode error", func(t *testing.T) {
		var p payload
		err := DecodeJSON("not json at all", &p)
		require.Error(t, err)
		var perr *schema.PipelineError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, schema.ErrCodeDecode, perr.Code)
	})

	t.Run("empty payload reports decode error", func(t *testing.T) {
		var p payload
		err := DecodeJSON("``````", &p)
		require.Error(t, err)
	})
}

func TestExtractor(t *testing.T) {
	e := NewExtractor()
	query := `if type == "array" then . else .suggestions // empty end`

	t.Run("bare array passes through", func(t *testing.T) {
		var out []string
		err := e.Extract(`["a", "b"]`, `.`, &out)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, out)
	})

	t.Run("object-wrapped array is unwrapped", func(t *testing.T) {
		var out []map[string]any
		raw := "```json\n{\"suggestions\": [{\"type\": \"flowchart\"}]}\n```"
		err := e.Extract(raw, query, &out)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "flowchart", out[0]["type"])
	})

	t.Run("missing key produces no output", func(t *testing.T) {
		var out []string
		err := e.Extract(`{"other": 1}`, query, &out)
		require.Error(t, err)
	})

	t.Run("shape mismatch is a decode error", func(t *testing.T) {
		var out []string
		err := e.Extract(`{"suggestions": "not an array"}`, query, &out)
		require.Error(t, err)
	})

	t.Run("compiled queries are cached", func(t *testing.T) {
		var out []string
		require.NoError(t, e.Extract(`["x"]`, query+" | .", &out))
		require.NoError(t, e.Extract(`["y"]`, query+" | .", &out))
		assert.Equal(t, []string{"y"}, out)
	})
}
