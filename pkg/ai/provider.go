package ai

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrEmptyCompletion is returned when a provider answers without any text.
var ErrEmptyCompletion = errors.New("empty completion")

const (
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderLangChain = "langchain"
)

// ProviderConfig selects and configures a completion provider.
type ProviderConfig struct {
	Provider string
	BaseURL  string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// NewGenerator returns the TextGenerator named by cfg.Provider.
func NewGenerator(cfg ProviderConfig) (TextGenerator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderOpenAI, "openai-compat":
		return NewOpenAICompatGenerator(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.Timeout), nil
	case ProviderGemini:
		return NewGeminiGenerator(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.Timeout)
	case ProviderLangChain:
		return NewLangChainGenerator(cfg.BaseURL, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported generation provider %q", cfg.Provider)
	}
}
