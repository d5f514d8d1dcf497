package mermaid

import (
	"regexp"
	"strings"

	"github.com/drawbridge-dev/drawbridge/pkg/schema"
)

// Repair rules are ordered and idempotent: applying Repair to its own
// output changes nothing.
var (
	doubledOpenBrace  = regexp.MustCompile(`\{{2,}`)
	doubledCloseBrace = regexp.MustCompile(`\}{2,}`)
	looseArrow        = regexp.MustCompile(`\s+->\s+`)
	crampedArrowLeft  = regexp.MustCompile(`(\w)-->`)
	crampedArrowRight = regexp.MustCompile(`-->(\w)`)
)

// Repair applies the fixed catalogue of mechanical fixes for the given
// diagram type: collapsing doubled braces where the grammar expects single
// pairs, normalizing loose arrow tokens to the canonical form, normalizing
// line endings, and stripping trailing whitespace. It never errors; when no
// fix applies the input is returned unchanged.
//
// This is the first, cheapest rung of the repair ladder: it needs no call
// to the generation service.
func Repair(source string, t schema.DiagramType) string {
	fixed := source

	// Normalize line endings first so per-line fixes see plain LF.
	fixed = strings.ReplaceAll(fixed, "\r\n", "\n")
	fixed = strings.ReplaceAll(fixed, "\r", "\n")

	switch t {
	case schema.DiagramER:
		// Doubled braces around entity blocks are the most common
		// model mistake in ER output.
		fixed = doubledOpenBrace.ReplaceAllString(fixed, "{")
		fixed = doubledCloseBrace.ReplaceAllString(fixed, "}")
	case schema.DiagramFlowchart:
		fixed = looseArrow.ReplaceAllString(fixed, " --> ")
		// Two one-sided passes so chained edges like A-->B-->C are
		// fully spaced in a single Repair call.
		fixed = crampedArrowLeft.ReplaceAllString(fixed, "$1 -->")
		fixed = crampedArrowRight.ReplaceAllString(fixed, "--> $1")
	}

	lines := strings.Split(fixed, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
