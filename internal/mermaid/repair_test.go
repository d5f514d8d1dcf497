package mermaid

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/drawbridge-dev/drawbridge/pkg/schema"
)

func TestRepair(t *testing.T) {
	tests := []struct {
		name   string
		dtype  schema.DiagramType
		source string
		want   string
	}{
		{
			name:   "er doubled braces collapsed",
			dtype:  schema.DiagramER,
			source: "erDiagram\n    CUSTOMER {{\n        int id\n    }}",
			want:   "erDiagram\n    CUSTOMER {\n        int id\n    }",
		},
		{
			name:   "er tripled braces collapsed",
			dtype:  schema.DiagramER,
			source: "erDiagram\n    CUSTOMER {{{\n    }}}",
			want:   "erDiagram\n    CUSTOMER {\n    }",
		},
		{
			name:   "flowchart single dash arrow normalized",
			dtype:  schema.DiagramFlowchart,
			source: "flowchart TD\n    A -> B",
			want:   "flowchart TD\n    A --> B",
		},
		{
			name:   "flowchart cramped arrows spaced",
			dtype:  schema.DiagramFlowchart,
			source: "flowchart TD\n    A-->B-->C",
			want:   "flowchart TD\n    A --> B --> C",
		},
		{
			name:   "crlf normalized",
			dtype:  schema.DiagramSequence,
			source: "sequenceDiagram\r\n    A->>B: hi\r\n",
			want:   "sequenceDiagram\n    A->>B: hi\n",
		},
		{
			name:   "trailing whitespace stripped",
			dtype:  schema.DiagramGantt,
			source: "gantt  \n    title Plan\t",
			want:   "gantt\n    title Plan",
		},
		{
			name:   "no applicable fix returns input unchanged",
			dtype:  schema.DiagramPie,
			source: "pie title Share\n    \"A\" : 60",
			want:   "pie title Share\n    \"A\" : 60",
		},
		{
			name:   "brace collapse does not apply outside er",
			dtype:  schema.DiagramFlowchart,
			source: "flowchart TD\n    A{{Hexagon}} --> B",
			want:   "flowchart TD\n    A{{Hexagon}} --> B",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Repair(tt.source, tt.dtype))
		})
	}
}

// Applying Repair to its own output must be a no-op.
func TestRepairIsIdempotent(t *testing.T) {
	sources := map[schema.DiagramType]string{
		schema.DiagramER:        "erDiagram\n    A {{{\n    }}}\n    A ||--o{ B : has",
		schema.DiagramFlowchart: "flowchart TD\n    A->B-->C -> D\n    C-->E",
		schema.DiagramSequence:  "sequenceDiagram\r\n    A->>B: hi",
	}
	for dtype, source := range sources {
		once := Repair(source, dtype)
		twice := Repair(once, dtype)
		assert.Equal(t, once, twice, "type %s", dtype)
	}
}
