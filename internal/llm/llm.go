// Package llm provides text-generation backend clients for tone analysis.
package llm

import (
	"context"
	"fmt"
)

// Provider identifies a text-generation backend provider.
type Provider string

const (
	ProviderHuggingFace Provider = "huggingface"
	ProviderOpenAI      Provider = "openai"
)

// DecodingParams controls how the backend generates text.
type DecodingParams struct {
	// Deterministic disables sampling; the backend decodes greedily or
	// with beam search only.
	Deterministic bool
	NumBeams      int
	MaxNewTokens  int
	Temperature   float64
	TopP          float64
	EarlyStopping bool
}

// Backend is a generative model capability shared by tone detection and
// rewriting. Implementations must be safe for concurrent Generate calls
// once Load has succeeded.
type Backend interface {
	// Load prepares the backend for inference. Calling Load on an
	// already-loaded backend is a no-op on the provider side.
	Load(ctx context.Context) error

	// Generate produces a completion for the prompt.
	Generate(ctx context.Context, prompt string, params DecodingParams) (string, error)
}

// Config holds backend construction parameters.
type Config struct {
	Provider Provider
	Model    string
	APIKey   string
}

// New creates a backend for the configured provider.
func New(cfg Config) (Backend, error) {
	switch cfg.Provider {
	case ProviderHuggingFace:
		return NewHuggingFaceBackend(cfg.APIKey, cfg.Model), nil
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		return NewOpenAIBackend(cfg.APIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown provider: %q", cfg.Provider)
	}
}
