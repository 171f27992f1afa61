// Package llm talks to hosted language models.
package llm

import (
	"context"
	"errors"
)

// ErrDisabled is returned by the provider used when no model is configured.
var ErrDisabled = errors.New("language model is disabled")

// Request describes one text completion.
type Request struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
	// JSON asks the model for a JSON object instead of free text.
	JSON bool
}

// Provider defines the interface that all language model backends must implement
type Provider interface {
	// Complete returns the model's answer to req.
	Complete(ctx context.Context, req Request) (string, error)

	// Name returns the provider name (e.g., "mistral", "gemini")
	Name() string
}

type disabled struct{}

func (disabled) Complete(context.Context, Request) (string, error) { return "", ErrDisabled }
func (disabled) Name() string                                      { return ProviderNone }
