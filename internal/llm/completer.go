// Package llm defines the generation service boundary: a text-completion
// capability treated as an untrusted, fallible black box, plus the
// defensive decoding helpers every caller shares.
package llm

import "context"

// Completer is the single capability the pipeline needs from a generation
// service: prompt in, free-form text out. Implementations may fail or
// return malformed output; callers own the fallback behavior.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a plain function to the Completer interface.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
