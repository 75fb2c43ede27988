package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// LangChainGenerator routes completions through langchaingo's OpenAI client.
type LangChainGenerator struct {
	llm llms.Model
}

// NewLangChainGenerator builds a generator on langchaingo. baseURL may be
// empty to use the public OpenAI endpoint.
func NewLangChainGenerator(baseURL, apiKey, model string) (*LangChainGenerator, error) {
	opts := []openai.Option{
		openai.WithToken(strings.TrimSpace(apiKey)),
		openai.WithModel(strings.TrimSpace(model)),
	}
	if u := strings.TrimSpace(baseURL); u != "" {
		opts = append(opts, openai.WithBaseURL(u))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("init langchain openai: %w", err)
	}
	return &LangChainGenerator{llm: llm}, nil
}

func (g *LangChainGenerator) GenerateText(ctx context.Context, systemPrompt, userPrompt string, opts GenerationOptions) (string, error) {
	msgs := make([]llms.MessageContent, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt))
	}
	msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeHuman, userPrompt))

	var callOpts []llms.CallOption
	if opts.Temperature > 0 {
		callOpts = append(callOpts, llms.WithTemperature(opts.Temperature))
	}
	if opts.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(opts.MaxTokens))
	}
	resp, err := g.llm.GenerateContent(ctx, msgs, callOpts...)
	if err != nil {
		return "", fmt.Errorf("langchain generate: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(resp.Choices[0].Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
