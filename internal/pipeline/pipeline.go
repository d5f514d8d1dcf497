// Package pipeline sequences intent analysis, diagram-type suggestion,
// generation, validation/repair, and recommendation over a single mutable
// Session. Every stage is a total function over the Session: failures are
// caught at the stage boundary and substituted with fallbacks, so the
// Session always reaches the end of a run with partial results and an
// explicit step label.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/drawbridge-dev/drawbridge/internal/generators"
	"github.com/drawbridge-dev/drawbridge/internal/llm"
	"github.com/drawbridge-dev/drawbridge/internal/logging"
	"github.com/drawbridge-dev/drawbridge/internal/mermaid"
	"github.com/drawbridge-dev/drawbridge/internal/ranking"
	"github.com/drawbridge-dev/drawbridge/pkg/schema"
)

// Step labels recorded on the Session as stages complete or fall back.
const (
	StepIntentAnalyzed           = "intent analyzed"
	StepIntentFallback           = "intent analysis failed, using fallback"
	StepSuggestionsGenerated     = "suggestions generated"
	StepSuggestionsFallback      = "suggestions failed, using fallback"
	StepAwaitingSelection        = "awaiting diagram type selection"
	StepDiagramGenerated         = "diagram generated"
	StepDiagramFallback          = "diagram generation failed, using fallback"
	StepRecommendationsGenerated = "recommendations generated"
	StepRecommendationsFallback  = "recommendations failed, using fallback"
)

// Config holds the pipeline's collaborators.
type Config struct {
	// Completer is the generation service. Required.
	Completer llm.Completer
	// Logger defaults to slog.Default.
	Logger *slog.Logger
	// Rules override the default ranking rules when non-nil.
	Rules []ranking.Rule
}

// Pipeline is the orchestration state machine. All fields are read-only
// after construction, so one Pipeline serves arbitrarily many concurrent
// sessions as long as each request gets its own Session.
type Pipeline struct {
	completer llm.Completer
	registry  *generators.Registry
	ladder    *mermaid.Ladder
	ranker    *ranking.Ranker
	schemas   *payloadSchemas
	extractor *llm.Extractor
	logger    *slog.Logger
}

// New builds a Pipeline, compiling the payload schemas and ranking rules
// up front so per-request work is pure dispatch.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Completer == nil {
		return nil, schema.NewError(schema.ErrCodeValidation, "pipeline requires a completer")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	schemas, err := compilePayloadSchemas()
	if err != nil {
		return nil, err
	}
	rules := cfg.Rules
	if rules == nil {
		rules = ranking.DefaultRules()
	}
	return &Pipeline{
		completer: cfg.Completer,
		registry:  generators.NewRegistry(cfg.Completer),
		ladder:    mermaid.NewLadder(cfg.Completer, logger),
		ranker:    ranking.NewRanker(rules, logger),
		schemas:   schemas,
		extractor: llm.NewExtractor(),
		logger:    logger,
	}, nil
}

// Run advances the session as far as it can go: through intent analysis
// and suggestion, and then through generation and recommendation once the
// consumer has set the selected type. Calling Run twice on the same
// session (once before, once after selecting a type) is the supported
// resumption protocol; completed stages are not repeated on the second
// call.
func (p *Pipeline) Run(ctx context.Context, s *schema.Session) *schema.Session {
	if s == nil {
		return nil
	}
	ctx = logging.WithSessionID(ctx, s.ID)

	if s.Intent == nil {
		p.analyzeIntent(logging.WithStage(ctx, "intent_analysis"), s)
	}
	if len(s.Suggestions) == 0 {
		p.suggest(logging.WithStage(ctx, "suggestion"), s)
	}

	// Conditional branch: without a selection the pipeline halts cleanly
	// with suggestions available for the consumer to choose from.
	if s.SelectedType == nil {
		s.Touch(StepAwaitingSelection)
		return s
	}

	if s.DiagramSource == "" {
		p.generate(logging.WithStage(ctx, "generation"), s)
	}
	if len(s.Recommendations) == 0 {
		p.recommend(logging.WithStage(ctx, "recommendation"), s)
	}
	return s
}

// ValidateAndRepair checks existing Mermaid source against the rules for
// the given type and, when it fails, walks the repair ladder. The verdict
// describes the original source; the returned text is the best source
// available afterwards.
func (p *Pipeline) ValidateAndRepair(ctx context.Context, source string, t schema.DiagramType) (mermaid.Verdict, string, mermaid.LadderStatus) {
	verdict := mermaid.Validate(source, t)
	if verdict.Valid {
		return verdict, source, mermaid.StatusValid
	}
	ctx = logging.WithStage(ctx, "validation")
	_, repaired, status := p.ladder.Run(ctx, source, t)
	return verdict, repaired, status
}
