package ai

import "context"

// GenerationOptions bounds a single completion.
type GenerationOptions struct {
	Temperature float64
	MaxTokens   int
}

// TextGenerator produces one completion from a system prompt and a user prompt.
// All providers (OpenAI-compatible, Gemini, langchaingo) implement it.
type TextGenerator interface {
	GenerateText(ctx context.Context, systemPrompt, userPrompt string, opts GenerationOptions) (string, error)
}
