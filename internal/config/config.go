// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime configuration for the text toner service.
type Config struct {
	Port        int    `envconfig:"PORT" default:"8080"`
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"30m"`

	// Model backend
	LLMProvider  string `envconfig:"LLM_PROVIDER" default:"huggingface"`
	LLMModel     string `envconfig:"LLM_MODEL" default:"google/flan-t5-xl"`
	HFAPIToken   string `envconfig:"HF_API_TOKEN"`
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	// Tone engine
	MaxTextLength           int           `envconfig:"MAX_TEXT_LENGTH" default:"512"`
	ConfidenceThreshold     float64       `envconfig:"CONFIDENCE_THRESHOLD" default:"0.3"`
	InferTimeout            time.Duration `envconfig:"INFER_TIMEOUT" default:"30s"`
	MaxConcurrentInferences int           `envconfig:"MAX_CONCURRENT_INFERENCES" default:"4"`
	// Load the backend at startup instead of on first request.
	PreloadModel bool `envconfig:"PRELOAD_MODEL" default:"true"`

	// Per-client rate limiting of the public analyze endpoint.
	AnalyzeRate  float64 `envconfig:"ANALYZE_RATE" default:"1"`
	AnalyzeBurst int     `envconfig:"ANALYZE_BURST" default:"5"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads configuration from a .env file (if present) and the process
// environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
