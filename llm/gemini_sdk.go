package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GeminiSDKClient generates content through the generative-ai-go SDK
type GeminiSDKClient struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewGeminiSDKClient creates the SDK client. In offline mode no SDK client is
// created and Generate reports ErrAPIKeyMissing.
func NewGeminiSDKClient(ctx context.Context, cfg Config, logger *zap.Logger) (*GeminiSDKClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	c := &GeminiSDKClient{
		model:  model,
		logger: logger.With(zap.String("provider", ProviderGeminiSDK), zap.String("model", model)),
	}
	if cfg.Offline() {
		return c, nil
	}

	opts := []option.ClientOption{option.WithAPIKey(strings.TrimSpace(cfg.APIKey))}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	c.client = client
	c.logger.Info("Gemini SDK client initialized")
	return c, nil
}

// Generate implements Client
func (c *GeminiSDKClient) Generate(ctx context.Context, prompt string, gc GenerationConfig) (string, error) {
	if c.client == nil {
		return "", ErrAPIKeyMissing
	}

	model := c.client.GenerativeModel(c.model)
	if gc.Temperature != nil {
		model.SetTemperature(float32(*gc.Temperature))
	}
	if gc.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(int32(gc.MaxOutputTokens))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", c.mapError(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	if text.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return text.String(), nil
}

func (c *GeminiSDKClient) mapError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == http.StatusForbidden {
			c.logger.Error("generation request forbidden", zap.String("message", gerr.Message))
			return restricted(gerr.Message)
		}
		return &APIError{StatusCode: gerr.Code, Message: gerr.Message}
	}
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return &APIError{Message: blocked.Error()}
	}
	return fmt.Errorf("gemini sdk request failed: %w", err)
}

// Close releases the SDK connection
func (c *GeminiSDKClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
