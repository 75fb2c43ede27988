package legal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"legalgpt/pkg/ai"
)

// ErrGuidanceUnavailable is returned when the completion provider fails or
// answers with nothing.
var ErrGuidanceUnavailable = errors.New("legal guidance is unavailable")

const (
	QuestionTemperature = 0.7
	AnalysisTemperature = 0.5
	DefaultMaxTokens    = 2000
)

// Gateway turns a question or document into a jurisdiction-aware completion.
// It holds no per-call state.
type Gateway struct {
	generator ai.TextGenerator
	maxTokens int
	timeout   time.Duration
}

func NewGateway(generator ai.TextGenerator, maxTokens int) *Gateway {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Gateway{generator: generator, maxTokens: maxTokens}
}

// WithTimeout bounds every completion call. Keep it below the HTTP write
// deadline. Zero leaves only the caller's context.
func (g *Gateway) WithTimeout(d time.Duration) *Gateway {
	g.timeout = d
	return g
}

// GetGuidance answers an open legal question.
func (g *Gateway) GetGuidance(ctx context.Context, query string, country Country) (string, error) {
	return g.complete(ctx, SystemPrompt(country), query, QuestionTemperature)
}

// AnalyzeDocument produces a structured analysis of document text.
func (g *Gateway) AnalyzeDocument(ctx context.Context, text string, country Country) (string, error) {
	return g.complete(ctx, DocumentSystemPrompt(country), text, AnalysisTemperature)
}

func (g *Gateway) complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	if g == nil || g.generator == nil {
		return "", ErrGuidanceUnavailable
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	text, err := g.generator.GenerateText(ctx, system, user, ai.GenerationOptions{
		Temperature: temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGuidanceUnavailable, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrGuidanceUnavailable
	}
	return text, nil
}
