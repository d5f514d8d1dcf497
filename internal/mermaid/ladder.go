package mermaid

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/drawbridge-dev/drawbridge/internal/llm"
	"github.com/drawbridge-dev/drawbridge/pkg/schema"
)

// LadderStatus reports how far up the repair ladder a source had to climb.
type LadderStatus string

const (
	StatusValid           LadderStatus = "valid"
	StatusFixedStructural LadderStatus = "fixed-structural"
	StatusFixedAssisted   LadderStatus = "fixed-assisted"
	StatusUnresolved      LadderStatus = "unresolved"
)

// Ladder escalates repair cost only as needed: deterministic structural
// fixes first, a model-assisted fix second, and a final structural pass
// over the model output as defense against the model reproducing the same
// mechanical mistake. The best-effort text is always returned, never
// discarded, so the caller can decide whether to fall back to a template.
//
// Each rung is its own method so the escalation order and termination
// condition are testable without a generation service.
type Ladder struct {
	completer llm.Completer
	logger    *slog.Logger
}

// NewLadder creates a repair ladder. completer may be nil, in which case
// the assisted rung is skipped and the ladder degrades to structural fixes.
func NewLadder(completer llm.Completer, logger *slog.Logger) *Ladder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ladder{completer: completer, logger: logger}
}

// Run validates source and climbs the repair ladder until it is valid or
// the rungs are exhausted. The returned text is never empty for non-empty
// input, and the returned status records which rung resolved it.
func (l *Ladder) Run(ctx context.Context, source string, t schema.DiagramType) (bool, string, LadderStatus) {
	verdict := Validate(source, t)
	if verdict.Valid {
		return true, source, StatusValid
	}
	l.logger.DebugContext(ctx, "validation failed, entering repair ladder",
		slog.String("diagram_type", string(t)), slog.String("reason", verdict.Message))

	if repaired, ok := l.rungStructural(source, t); ok {
		return true, repaired, StatusFixedStructural
	}

	fixed, ok, err := l.rungAssisted(ctx, source, t, verdict.Message)
	if err != nil {
		l.logger.WarnContext(ctx, "assisted repair failed",
			slog.String("diagram_type", string(t)), slog.String("error", err.Error()))
		return false, bestEffort(Repair(source, t), source), StatusUnresolved
	}
	if ok {
		return true, fixed, StatusFixedAssisted
	}

	if post, postOK := l.rungStructural(fixed, t); postOK {
		return true, post, StatusFixedAssisted
	}
	return false, bestEffort(fixed, source), StatusUnresolved
}

// rungStructural applies the deterministic repairer and revalidates.
func (l *Ladder) rungStructural(source string, t schema.DiagramType) (string, bool) {
	repaired := Repair(source, t)
	return repaired, Validate(repaired, t).Valid
}

// rungAssisted asks the generation service to correct only the syntax while
// preserving the diagram's structure and intent, then revalidates. The
// second return reports validity of the fixed text; err is set only when no
// usable text came back at all.
func (l *Ladder) rungAssisted(ctx context.Context, broken string, t schema.DiagramType, reason string) (string, bool, error) {
	if l.completer == nil {
		return "", false, schema.NewError(schema.ErrCodeGeneration, "no generation service configured")
	}

	prompt := fmt.Sprintf(`You are a Mermaid diagram syntax expert. Fix the syntax errors in the given diagram code.

Diagram Type: %s
Error Message: %s
Broken Diagram Code:
%s

Your task:
1. Analyze the syntax error in the context of %s diagrams
2. Fix the specific issues while preserving the diagram's intent and structure
3. Ensure the output follows proper Mermaid syntax rules for %s

Common fixes needed:
- Use --> instead of ->
- Use single braces instead of double braces
- Correct the diagram type declaration on the first line
- Balance quotes and delimiters

Return ONLY the corrected Mermaid code, no explanations.`,
		t, reason, broken, t, t)

	out, err := l.completer.Complete(ctx, prompt)
	if err != nil {
		return "", false, err
	}
	fixed := llm.StripFences(out)
	if strings.TrimSpace(fixed) == "" {
		return "", false, schema.NewError(schema.ErrCodeGeneration, "assisted repair returned empty text")
	}
	return fixed, Validate(fixed, t).Valid, nil
}

// bestEffort never hands back nothing: if the candidate text is blank the
// original broken source is still more useful to the caller.
func bestEffort(candidate, original string) string {
	if strings.TrimSpace(candidate) == "" {
		return original
	}
	return candidate
}
