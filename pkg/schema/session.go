package schema

import (
	"time"

	"github.com/google/uuid"
)

// Intent is the structured summary extracted from free-form user text.
// The JSON keys match the shape the generation service is asked to produce.
type Intent struct {
	PrimaryIntent      string   `json:"primary_intent"`
	Domain             string   `json:"domain"`
	Complexity         string   `json:"complexity"`
	Entities           []string `json:"entities"`
	Relationships      []string `json:"relationships"`
	TemporalAspect     bool     `json:"temporal_aspect"`
	HierarchicalAspect bool     `json:"hierarchical_aspect"`
	DataVisualization  bool     `json:"data_visualization"`
	ProcessFlow        bool     `json:"process_flow"`
	SystemDesign       bool     `json:"system_design"`
}

// NeutralIntent is the fixed fallback used when intent analysis fails.
// The pipeline continues with it rather than aborting.
func NeutralIntent() *Intent {
	return &Intent{
		PrimaryIntent: "Create a diagram",
		Domain:        "general",
		Complexity:    ComplexityMedium,
		Entities:      []string{},
		Relationships: []string{},
		ProcessFlow:   true,
	}
}

// Suggestion is a recommended diagram type with rationale.
// Immutable once created; owned by the Session's suggestion list.
type Suggestion struct {
	Type        DiagramType `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	UseCase     string      `json:"use_case"`
	Complexity  string      `json:"complexity"`
}

// GenericSuggestion is the whole-stage fallback when no usable suggestions
// could be obtained from the generation service.
func GenericSuggestion() Suggestion {
	return Suggestion{
		Type:        DiagramFlowchart,
		Title:       "Simple Flowchart",
		Description: "A basic flowchart to visualize your process",
		UseCase:     "General purpose process visualization",
		Complexity:  ComplexitySimple,
	}
}

// Idea is a starter diagram idea shown before a user has typed anything.
type Idea struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ExampleInput string `json:"example_input"`
	DiagramType  string `json:"diagram_type"`
	Category     string `json:"category"`
	Complexity   string `json:"complexity"`
}

// Session is the unit of work flowing through the pipeline. It is created
// once per user request, mutated in place by each stage, and archived (or
// discarded) once a diagram has been produced.
//
// Invariants maintained by the pipeline:
//   - SelectedType is never set before Suggestions is non-empty.
//   - DiagramSource is never set before SelectedType is set.
//   - Recommendations are only computed once DiagramSource is non-empty.
type Session struct {
	ID              string       `json:"id"`
	UserInput       string       `json:"user_input"`
	Intent          *Intent      `json:"intent,omitempty"`
	Suggestions     []Suggestion `json:"suggestions,omitempty"`
	SelectedType    *DiagramType `json:"selected_type,omitempty"`
	DiagramSource   string       `json:"diagram_source,omitempty"`
	Recommendations []string     `json:"recommendations,omitempty"`
	Step            string       `json:"step"`
	Trace           []string     `json:"trace,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// NewSession creates a Session for the given user input. UserInput is
// immutable once set.
func NewSession(userInput string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.New().String(),
		UserInput: userInput,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Select sets the diagram type chosen by the consumer. It is the only
// pipeline-internal field the presentation layer is allowed to write.
// Selecting before suggestions exist violates the session invariant.
func (s *Session) Select(t DiagramType) error {
	if len(s.Suggestions) == 0 {
		return NewError(ErrCodeValidation, "cannot select a diagram type before suggestions exist")
	}
	if err := t.Validate(); err != nil {
		return err
	}
	s.SelectedType = &t
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Touch updates the step label and modification time, and appends the
// label to the trace so consumers can see which stages succeeded and which
// fell back even after later stages overwrite Step.
func (s *Session) Touch(step string) {
	s.Step = step
	s.Trace = append(s.Trace, step)
	s.UpdatedAt = time.Now().UTC()
}
