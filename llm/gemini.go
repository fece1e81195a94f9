package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	initialBackoff  = time.Second
	maxLoggedBody   = 1000
	maxErrorMessage = 300
)

// GeminiClient calls the generateContent REST endpoint directly
type GeminiClient struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

// NewGeminiClient creates a REST client for cfg
func NewGeminiClient(cfg Config, logger *zap.Logger) *GeminiClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiClient{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		endpoint:   fmt.Sprintf("%s/models/%s:generateContent", baseURL, model),
		httpClient: &http.Client{Timeout: cfg.timeout()},
		maxRetries: max(0, cfg.MaxRetries),
		backoff:    initialBackoff,
		logger:     logger.With(zap.String("provider", ProviderGemini), zap.String("model", model)),
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason,omitempty"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason,omitempty"`
	} `json:"promptFeedback,omitempty"`
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error,omitempty"`
}

// Generate sends prompt and returns the text of the first candidate.
// Rate limiting and server errors are retried with exponential backoff.
func (c *GeminiClient) Generate(ctx context.Context, prompt string, gc GenerationConfig) (string, error) {
	if c.apiKey == "" {
		return "", ErrAPIKeyMissing
	}

	body := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	if gc.Temperature != nil || gc.MaxOutputTokens > 0 {
		body.GenerationConfig = &geminiGenerationConfig{
			Temperature:     gc.Temperature,
			MaxOutputTokens: gc.MaxOutputTokens,
		}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	backoff := c.backoff
	for attempt := 0; ; attempt++ {
		text, err := c.do(ctx, payload)
		if err == nil {
			return text, nil
		}

		var apiErr *APIError
		if attempt >= c.maxRetries || !errors.As(err, &apiErr) || !apiErr.retryable() {
			return "", err
		}

		c.logger.Warn("generation request failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

func (c *GeminiClient) do(ctx context.Context, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusForbidden {
		c.logger.Error("generation request forbidden", zap.String("body", clip(bodyBytes, maxLoggedBody)))
		return "", restricted(errorMessage(bodyBytes))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("generation request failed",
			zap.Int("status", resp.StatusCode),
			zap.String("body", clip(bodyBytes, maxLoggedBody)),
		)
		return "", &APIError{StatusCode: resp.StatusCode, Message: errorMessage(bodyBytes)}
	}

	var apiResp geminiResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		c.logger.Error("failed to decode response", zap.String("body", clip(bodyBytes, maxLoggedBody)))
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if apiResp.Error.Message != "" {
		return "", &APIError{StatusCode: apiResp.Error.Code, Message: apiResp.Error.Message}
	}
	if apiResp.PromptFeedback.BlockReason != "" {
		return "", &APIError{StatusCode: resp.StatusCode, Message: "prompt blocked: " + apiResp.PromptFeedback.BlockReason}
	}
	if len(apiResp.Candidates) == 0 {
		c.logger.Warn("response had no candidates", zap.String("body", clip(bodyBytes, maxLoggedBody)))
		return "", ErrEmptyResponse
	}

	candidate := apiResp.Candidates[0]
	if candidate.FinishReason != "" && candidate.FinishReason != "STOP" {
		// MAX_TOKENS is expected for long analyses; the extractor repairs those.
		c.logger.Info("candidate finished early", zap.String("finish_reason", candidate.FinishReason))
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		text.WriteString(part.Text)
	}
	if text.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return text.String(), nil
}

// errorMessage pulls error.message out of a Google error body, or falls back
// to the clipped raw body.
func errorMessage(body []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return clip(body, maxErrorMessage)
}

func clip(body []byte, n int) string {
	if len(body) <= n {
		return string(body)
	}
	return string(body[:n])
}
