package mermaid

import (
	"strings"

	"github.com/drawbridge-dev/drawbridge/pkg/schema"
)

// Verdict is the result of validating a candidate diagram source.
// Never persisted; transient per validation call.
type Verdict struct {
	Valid   bool
	Message string
}

func valid() Verdict           { return Verdict{Valid: true, Message: "valid syntax"} }
func invalid(msg string) Verdict { return Verdict{Valid: false, Message: msg} }

// Validate checks a candidate diagram source against the language rules for
// the given type. It is a pure, total function: it never panics and always
// returns a verdict. This is the canonical well-formedness oracle used by
// every later stage.
func Validate(source string, t schema.DiagramType) Verdict {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return invalid("diagram source is empty")
	}

	first := firstNonBlankLine(trimmed)
	if !RulesFor(t).Opener.MatchString(first) {
		return invalid("diagram must start with the correct " + string(t) + " declaration")
	}

	// ER cardinality tokens carry lone braces that are not block delimiters.
	balanceInput := source
	if t == schema.DiagramER {
		balanceInput = MaskERRelationships(source)
	}
	if msg, ok := checkDelimiters(balanceInput); !ok {
		return invalid(msg)
	}

	if strings.Count(source, `"`)%2 != 0 || strings.Count(source, `'`)%2 != 0 {
		return invalid("unmatched quotes in diagram")
	}

	// Type-specific anomalies: doubled braces are valid nowhere in ER
	// entity blocks even though flowchart hexagon syntax uses them.
	if t == schema.DiagramER && strings.Contains(source, "{{") {
		return invalid("ER diagram should use single curly braces { } not double {{ }}")
	}

	return valid()
}

func firstNonBlankLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// checkDelimiters runs a stack-based matcher over (), [] and {} pairs.
// It rejects unmatched opens, unmatched closes, and crossed pairs like "(]".
func checkDelimiters(source string) (string, bool) {
	pairs := map[rune]rune{'(': ')', '[': ']', '{': '}'}
	closers := map[rune]bool{')': true, ']': true, '}': true}

	var stack []rune
	for _, r := range source {
		if _, isOpen := pairs[r]; isOpen {
			stack = append(stack, r)
			continue
		}
		if closers[r] {
			if len(stack) == 0 {
				return "unbalanced delimiters in diagram", false
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if pairs[open] != r {
				return "crossed delimiter pair in diagram", false
			}
		}
	}
	if len(stack) > 0 {
		return "unbalanced delimiters in diagram", false
	}
	return "", true
}
