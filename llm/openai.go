package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint
type OpenAIClient struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewOpenAIClient creates the client. In offline mode Generate reports
// ErrAPIKeyMissing.
func NewOpenAIClient(cfg Config, logger *zap.Logger) *OpenAIClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	c := &OpenAIClient{
		model:  model,
		logger: logger.With(zap.String("provider", ProviderOpenAI), zap.String("model", model)),
	}
	if cfg.Offline() {
		return c
	}

	clientConfig := openai.DefaultConfig(strings.TrimSpace(cfg.APIKey))
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.timeout()}
	c.client = openai.NewClientWithConfig(clientConfig)
	return c
}

// Generate implements Client
func (c *OpenAIClient) Generate(ctx context.Context, prompt string, gc GenerationConfig) (string, error) {
	if c.client == nil {
		return "", ErrAPIKeyMissing
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if gc.Temperature != nil {
		req.Temperature = float32(*gc.Temperature)
	}
	if gc.MaxOutputTokens > 0 {
		req.MaxTokens = gc.MaxOutputTokens
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", c.mapError(err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	if reason := resp.Choices[0].FinishReason; reason != "" && reason != openai.FinishReasonStop {
		c.logger.Info("completion finished early", zap.String("finish_reason", string(reason)))
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusForbidden {
			c.logger.Error("completion request forbidden", zap.String("message", apiErr.Message))
			return restricted(apiErr.Message)
		}
		return &APIError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == http.StatusForbidden {
			return restricted("")
		}
		return &APIError{StatusCode: reqErr.HTTPStatusCode, Message: reqErr.Error()}
	}
	return fmt.Errorf("openai request failed: %w", err)
}
