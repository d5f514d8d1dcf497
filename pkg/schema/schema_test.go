package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDiagramType(t *testing.T) {
	tests := []struct {
		in      string
		want    DiagramType
		wantErr bool
	}{
		{in: "flowchart", want: DiagramFlowchart},
		{in: "sequenceDiagram", want: DiagramSequence},
		{in: "SequenceDiagram", want: DiagramSequence},
		{in: "sequence", want: DiagramSequence},
		{in: "  erDiagram  ", want: DiagramER},
		{in: "graph", want: DiagramFlowchart},
		{in: "stateDiagram-v2", want: DiagramState},
		{in: "GANTT", want: DiagramGantt},
		{in: "hologram", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDiagramType(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				var perr *PipelineError
				require.True(t, errors.As(err, &perr))
				assert.Equal(t, ErrCodeUnknownType, perr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeComplexity(t *testing.T) {
	assert.Equal(t, ComplexitySimple, NormalizeComplexity("Simple"))
	assert.Equal(t, ComplexityComplex, NormalizeComplexity("COMPLEX"))
	assert.Equal(t, ComplexityMedium, NormalizeComplexity("moderate"))
	assert.Equal(t, ComplexityMedium, NormalizeComplexity(""))
}

func TestSessionSelect(t *testing.T) {
	s := NewSession("a process")

	// Selecting before suggestions exist violates the session invariant.
	err := s.Select(DiagramFlowchart)
	require.Error(t, err)
	assert.Nil(t, s.SelectedType)

	s.Suggestions = []Suggestion{GenericSuggestion()}
	require.NoError(t, s.Select(DiagramSequence))
	require.NotNil(t, s.SelectedType)
	assert.Equal(t, DiagramSequence, *s.SelectedType)

	err = s.Select(DiagramType("hologram"))
	require.Error(t, err)
	// The earlier selection survives a rejected one.
	assert.Equal(t, DiagramSequence, *s.SelectedType)
}

func TestSessionTouchAccumulatesTrace(t *testing.T) {
	s := NewSession("anything")
	s.Touch("intent analyzed")
	s.Touch("suggestions generated")

	assert.Equal(t, "suggestions generated", s.Step)
	assert.Equal(t, []string{"intent analyzed", "suggestions generated"}, s.Trace)
	assert.False(t, s.UpdatedAt.Before(s.CreatedAt))
}

func TestPipelineError(t *testing.T) {
	cause := errors.New("boom")
	err := NewErrorf(ErrCodeGeneration, "generate %s diagram", "flowchart").
		WithStage("generation").
		WithCause(cause).
		WithDetails(map[string]any{"attempt": 1})

	assert.Contains(t, err.Error(), "GENERATION_ERROR")
	assert.Contains(t, err.Error(), "generate flowchart diagram")
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "generation", err.Stage)
	assert.Equal(t, 1, err.Details["attempt"])
}

func TestNewSession(t *testing.T) {
	a := NewSession("input")
	b := NewSession("input")

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "input", a.UserInput)
	assert.Empty(t, a.Trace)
}
