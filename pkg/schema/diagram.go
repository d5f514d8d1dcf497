package schema

import (
	"fmt"
	"strings"
)

// DiagramType identifies one of the supported Mermaid diagram kinds.
// The values are the exact Mermaid spellings so they can be used directly
// in prompts and compared against generated source.
type DiagramType string

const (
	DiagramFlowchart DiagramType = "flowchart"
	DiagramSequence  DiagramType = "sequenceDiagram"
	DiagramGantt     DiagramType = "gantt"
	DiagramClass     DiagramType = "classDiagram"
	DiagramState     DiagramType = "stateDiagram"
	DiagramER        DiagramType = "erDiagram"
	DiagramJourney   DiagramType = "journey"
	DiagramPie       DiagramType = "pie"
	DiagramGitGraph  DiagramType = "gitgraph"
	DiagramMindmap   DiagramType = "mindmap"
)

// AllDiagramTypes returns the closed set of diagram types in display order.
func AllDiagramTypes() []DiagramType {
	return []DiagramType{
		DiagramFlowchart,
		DiagramSequence,
		DiagramGantt,
		DiagramClass,
		DiagramState,
		DiagramER,
		DiagramJourney,
		DiagramPie,
		DiagramGitGraph,
		DiagramMindmap,
	}
}

// diagramAliases maps lowercase spellings and common shorthand returned by
// the generation service to canonical types.
var diagramAliases = map[string]DiagramType{
	"flowchart":       DiagramFlowchart,
	"flow":            DiagramFlowchart,
	"graph":           DiagramFlowchart,
	"sequencediagram": DiagramSequence,
	"sequence":        DiagramSequence,
	"gantt":           DiagramGantt,
	"timeline":        DiagramGantt,
	"classdiagram":    DiagramClass,
	"class":           DiagramClass,
	"statediagram":    DiagramState,
	"statediagram-v2": DiagramState,
	"state":           DiagramState,
	"erdiagram":       DiagramER,
	"er":              DiagramER,
	"journey":         DiagramJourney,
	"user_journey":    DiagramJourney,
	"userjourney":     DiagramJourney,
	"pie":             DiagramPie,
	"gitgraph":        DiagramGitGraph,
	"mindmap":         DiagramMindmap,
}

// ParseDiagramType maps a type string from the generation service to the
// closed DiagramType enumeration. Matching is case-insensitive and accepts
// a small set of shorthand aliases. Unknown strings return an error with
// code UNKNOWN_TYPE; callers drop the offending suggestion, never the stage.
func ParseDiagramType(s string) (DiagramType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if t, ok := diagramAliases[key]; ok {
		return t, nil
	}
	return "", NewErrorf(ErrCodeUnknownType, "unknown diagram type %q", s)
}

// Complexity tiers used by Intent and Suggestion.
const (
	ComplexitySimple  = "simple"
	ComplexityMedium  = "medium"
	ComplexityComplex = "complex"
)

// NormalizeComplexity clamps arbitrary complexity strings to the known tiers,
// defaulting to medium.
func NormalizeComplexity(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case ComplexitySimple:
		return ComplexitySimple
	case ComplexityComplex:
		return ComplexityComplex
	default:
		return ComplexityMedium
	}
}

func (t DiagramType) String() string { return string(t) }

// Validate reports whether t is a member of the closed enumeration.
func (t DiagramType) Validate() error {
	for _, known := range AllDiagramTypes() {
		if t == known {
			return nil
		}
	}
	return NewError(ErrCodeUnknownType, fmt.Sprintf("diagram type %q is not in the closed set", string(t)))
}
