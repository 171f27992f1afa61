package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cloudly/miniapp/internal/config"
)

const (
	ProviderMistral = "mistral"
	ProviderGemini  = "gemini"
	ProviderNone    = "none"
)

// NewProvider creates a language model provider based on configuration.
// An unset or "none" provider yields one that always fails, so callers
// serve their fallback answers.
func NewProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	provider := cfg.LLMProvider

	slog.Info("initializing language model provider", "provider", provider)

	switch provider {
	case ProviderMistral:
		if cfg.MistralAPIKey == "" {
			return nil, fmt.Errorf("MISTRAL_API_KEY is required when using Mistral provider")
		}
		return NewMistral(cfg.MistralAPIKey, cfg.MistralModel, cfg.MistralURL, &http.Client{Timeout: cfg.LLMTimeout}), nil

	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required when using Gemini provider")
		}
		return NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)

	case ProviderNone, "":
		return disabled{}, nil

	default:
		return nil, fmt.Errorf("unknown language model provider: %s (supported: mistral, gemini, none)", provider)
	}
}
