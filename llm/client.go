package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Supported providers
const (
	ProviderGemini    = "gemini"
	ProviderGeminiSDK = "gemini-sdk"
	ProviderOpenAI    = "openai"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiModel   = "gemini-2.5-flash"
	DefaultOpenAIModel   = "gpt-4o-mini"
	DefaultTimeout       = 120 * time.Second
)

// Config is the explicit LLM configuration injected at startup.
// An empty APIKey puts every client in offline mode.
type Config struct {
	Provider   string
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// Offline reports whether no API key is configured
func (c Config) Offline() bool {
	return strings.TrimSpace(c.APIKey) == ""
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// GenerationConfig tunes a single completion. Nil or zero fields are left to
// the provider's defaults.
type GenerationConfig struct {
	Temperature     *float64
	MaxOutputTokens int
}

// Settings is a shorthand for a GenerationConfig with both fields set
func Settings(temperature float64, maxOutputTokens int) GenerationConfig {
	return GenerationConfig{Temperature: &temperature, MaxOutputTokens: maxOutputTokens}
}

// Client produces a text completion for a prompt
type Client interface {
	Generate(ctx context.Context, prompt string, gc GenerationConfig) (string, error)
}

// New builds the client for cfg.Provider. An empty provider selects the
// Gemini REST client.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Offline() {
		logger.Warn("LLM API key not set, responses will use offline fallbacks", zap.String("provider", cfg.Provider))
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderGemini:
		return NewGeminiClient(cfg, logger), nil
	case ProviderGeminiSDK:
		return NewGeminiSDKClient(ctx, cfg, logger)
	case ProviderOpenAI:
		return NewOpenAIClient(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
