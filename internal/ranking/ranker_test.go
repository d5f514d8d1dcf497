package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/drawbridge-dev/drawbridge/pkg/schema"
)

func suggestionsOf(types ...schema.DiagramType) []schema.Suggestion {
	out := make([]schema.Suggestion, 0, len(types))
	for _, t := range types {
		out = append(out, schema.Suggestion{Type: t, Title: string(t)})
	}
	return out
}

func typesOf(suggestions []schema.Suggestion) []schema.DiagramType {
	out := make([]schema.DiagramType, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, s.Type)
	}
	return out
}

func TestRankPromotesFacetMatches(t *testing.T) {
	r := NewRanker(DefaultRules(), nil)

	t.Run("temporal process flow favors sequence", func(t *testing.T) {
		intent := &schema.Intent{TemporalAspect: true, ProcessFlow: true}
		ranked := r.Rank(intent, suggestionsOf(
			schema.DiagramPie, schema.DiagramSequence, schema.DiagramFlowchart,
		))
		assert.Equal(t, schema.DiagramSequence, ranked[0].Type)
	})

	t.Run("data visualization favors pie", func(t *testing.T) {
		intent := &schema.Intent{DataVisualization: true}
		ranked := r.Rank(intent, suggestionsOf(
			schema.DiagramFlowchart, schema.DiagramPie,
		))
		assert.Equal(t, schema.DiagramPie, ranked[0].Type)
	})

	t.Run("unmatched facets preserve original order", func(t *testing.T) {
		intent := &schema.Intent{}
		original := suggestionsOf(schema.DiagramGantt, schema.DiagramJourney, schema.DiagramMindmap)
		ranked := r.Rank(intent, original)
		assert.Equal(t, typesOf(original), typesOf(ranked))
	})
}

func TestRankEdgeCases(t *testing.T) {
	r := NewRanker(DefaultRules(), nil)

	t.Run("nil intent returns input unchanged", func(t *testing.T) {
		original := suggestionsOf(schema.DiagramPie, schema.DiagramFlowchart)
		ranked := r.Rank(nil, original)
		assert.Equal(t, typesOf(original), typesOf(ranked))
	})

	t.Run("single suggestion returns input unchanged", func(t *testing.T) {
		original := suggestionsOf(schema.DiagramFlowchart)
		ranked := r.Rank(&schema.Intent{DataVisualization: true}, original)
		assert.Equal(t, original, ranked)
	})

	t.Run("input slice is not mutated", func(t *testing.T) {
		original := suggestionsOf(schema.DiagramFlowchart, schema.DiagramPie)
		_ = r.Rank(&schema.Intent{DataVisualization: true}, original)
		assert.Equal(t, schema.DiagramFlowchart, original[0].Type)
	})
}

func TestNewRankerDropsBrokenRules(t *testing.T) {
	rules := []Rule{
		{Expression: `process_flow &&`, Type: schema.DiagramFlowchart, Weight: 3},
		{Expression: `data_visualization`, Type: schema.DiagramPie, Weight: 3},
	}
	r := NewRanker(rules, nil)

	// Only the valid rule survives, and it still works.
	ranked := r.Rank(&schema.Intent{DataVisualization: true}, suggestionsOf(
		schema.DiagramFlowchart, schema.DiagramPie,
	))
	assert.Equal(t, schema.DiagramPie, ranked[0].Type)
}
