// Package generators holds one generation strategy per diagram type. Each
// strategy builds a tailored prompt (grammar cheat-sheet, worked example,
// readability constraints) and invokes the generation service once. The
// output is fence-stripped but not guaranteed valid; the repair ladder is
// applied by the orchestrator immediately after generation.
package generators

import (
	"context"
	"strings"

	"github.com/drawbridge-dev/drawbridge/internal/llm"
	"github.com/drawbridge-dev/drawbridge/pkg/schema"
)

// Generator produces raw diagram source for one diagram type.
type Generator interface {
	Type() schema.DiagramType
	Generate(ctx context.Context, userInput string, intent *schema.Intent) (string, error)
}

// Registry maps each member of the closed DiagramType enumeration to its
// generator. Read-only after construction; safe under concurrency.
type Registry struct {
	generators map[schema.DiagramType]Generator
}

// NewRegistry builds the dispatch table with one prompt-driven generator
// per diagram type, all backed by the same completer.
func NewRegistry(completer llm.Completer) *Registry {
	table := make(map[schema.DiagramType]Generator, len(schema.AllDiagramTypes()))
	for _, t := range schema.AllDiagramTypes() {
		table[t] = &promptGenerator{diagramType: t, completer: completer}
	}
	return &Registry{generators: table}
}

// For returns the generator for the given type.
func (r *Registry) For(t schema.DiagramType) (Generator, bool) {
	g, ok := r.generators[t]
	return g, ok
}

// promptGenerator is the shared strategy implementation: the per-type
// behavior lives entirely in the language rules table, so adding a diagram
// type is a one-row change there.
type promptGenerator struct {
	diagramType schema.DiagramType
	completer   llm.Completer
}

func (g *promptGenerator) Type() schema.DiagramType { return g.diagramType }

func (g *promptGenerator) Generate(ctx context.Context, userInput string, intent *schema.Intent) (string, error) {
	prompt := BuildPrompt(g.diagramType, userInput, intent)
	out, err := g.completer.Complete(ctx, prompt)
	if err != nil {
		return "", schema.NewErrorf(schema.ErrCodeGeneration, "generate %s diagram", g.diagramType).WithCause(err)
	}
	source := strings.TrimSpace(llm.StripFences(out))
	if source == "" {
		return "", schema.NewErrorf(schema.ErrCodeGeneration, "empty %s diagram from generation service", g.diagramType)
	}
	return source, nil
}
