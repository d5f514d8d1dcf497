package llm

import (
	"context"

	genai "google.golang.org/genai"

	"github.com/drawbridge-dev/drawbridge/pkg/schema"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// GeminiClient is a thin Completer over the official genai client. It only
// covers the API call itself; fallback handling lives with the callers.
type GeminiClient struct {
	cli   *genai.Client
	model string
}

// NewGeminiClient creates a Gemini-backed Completer. The API key is read
// from the environment (GEMINI_API_KEY) by the genai client itself.
func NewGeminiClient(ctx context.Context, model string) (*GeminiClient, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeGeneration, "create genai client").WithCause(err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &GeminiClient{cli: cli, model: model}, nil
}

// Name identifies the backing model, for logs.
func (g *GeminiClient) Name() string { return "gemini:" + g.model }

// Complete sends the prompt and returns the first candidate's text.
func (g *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		nil,
	)
	if err != nil {
		return "", schema.NewError(schema.ErrCodeGeneration, "generate content").WithCause(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", schema.NewError(schema.ErrCodeGeneration, "empty completion response")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
