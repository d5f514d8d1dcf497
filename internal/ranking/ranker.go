// Package ranking reorders diagram-type suggestions deterministically
// using boolean rules evaluated over the extracted intent facets. The
// generation service decides what to suggest; the ranker only makes the
// ordering stable and facet-aware.
package ranking

import (
	"log/slog"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/drawbridge-dev/drawbridge/pkg/schema"
)

// Rule boosts one diagram type when its expression evaluates true against
// the intent facets.
type Rule struct {
	// Expression is an expr-lang boolean expression over the facet
	// environment: temporal_aspect, hierarchical_aspect,
	// data_visualization, process_flow, system_design (bool),
	// complexity and domain (string).
	Expression string
	// Type is the diagram type boosted when the expression holds.
	Type schema.DiagramType
	// Weight is the score added on match.
	Weight int
}

// DefaultRules capture the facet-to-type affinities the suggestion prompt
// also describes, so deterministic ordering agrees with the prompt's own
// guidance.
func DefaultRules() []Rule {
	return []Rule{
		{Expression: `temporal_aspect && process_flow`, Type: schema.DiagramSequence, Weight: 3},
		{Expression: `process_flow && !temporal_aspect`, Type: schema.DiagramFlowchart, Weight: 3},
		{Expression: `temporal_aspect && complexity == "complex"`, Type: schema.DiagramGantt, Weight: 2},
		{Expression: `data_visualization`, Type: schema.DiagramPie, Weight: 3},
		{Expression: `hierarchical_aspect && !system_design`, Type: schema.DiagramMindmap, Weight: 2},
		{Expression: `system_design`, Type: schema.DiagramClass, Weight: 2},
		{Expression: `system_design && process_flow`, Type: schema.DiagramState, Weight: 1},
		{Expression: `domain == "technical" && data_visualization == false`, Type: schema.DiagramER, Weight: 1},
	}
}

type compiledRule struct {
	rule    Rule
	program *vm.Program
}

// Ranker evaluates a fixed rule set against an Intent and stably reorders
// suggestions so facet-matched types come first. Compiled programs are
// built once; evaluation is read-only and safe under concurrency.
type Ranker struct {
	rules  []compiledRule
	logger *slog.Logger
}

// NewRanker compiles the rule set. Rules that fail to compile are dropped
// with a warning; ranking must never be able to fail a pipeline stage.
func NewRanker(rules []Rule, logger *slog.Logger) *Ranker {
	if logger == nil {
		logger = slog.Default()
	}
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		prog, err := expr.Compile(r.Expression, expr.Env(facetEnv(nil)), expr.AsBool())
		if err != nil {
			logger.Warn("dropping uncompilable ranking rule",
				slog.String("expression", r.Expression), slog.String("error", err.Error()))
			continue
		}
		compiled = append(compiled, compiledRule{rule: r, program: prog})
	}
	return &Ranker{rules: compiled, logger: logger}
}

// Rank returns the suggestions reordered by descending facet score. The
// sort is stable, so the generation service's own ranking is preserved
// among equally scored types. A nil intent returns the input unchanged.
func (r *Ranker) Rank(intent *schema.Intent, suggestions []schema.Suggestion) []schema.Suggestion {
	if intent == nil || len(suggestions) < 2 {
		return suggestions
	}

	scores := r.scores(intent)
	ranked := make([]schema.Suggestion, len(suggestions))
	copy(ranked, suggestions)
	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i].Type] > scores[ranked[j].Type]
	})
	return ranked
}

// scores evaluates every rule once against the intent environment.
func (r *Ranker) scores(intent *schema.Intent) map[schema.DiagramType]int {
	env := facetEnv(intent)
	scores := make(map[schema.DiagramType]int)
	for _, cr := range r.rules {
		out, err := expr.Run(cr.program, env)
		if err != nil {
			// A broken rule skips itself, never the stage.
			r.logger.Debug("ranking rule evaluation failed",
				slog.String("expression", cr.rule.Expression), slog.String("error", err.Error()))
			continue
		}
		if matched, ok := out.(bool); ok && matched {
			scores[cr.rule.Type] += cr.rule.Weight
		}
	}
	return scores
}

func facetEnv(intent *schema.Intent) map[string]any {
	if intent == nil {
		intent = &schema.Intent{}
	}
	return map[string]any{
		"temporal_aspect":     intent.TemporalAspect,
		"hierarchical_aspect": intent.HierarchicalAspect,
		"data_visualization":  intent.DataVisualization,
		"process_flow":        intent.ProcessFlow,
		"system_design":       intent.SystemDesign,
		"complexity":          intent.Complexity,
		"domain":              intent.Domain,
	}
}
