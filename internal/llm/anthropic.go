package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const (
	envAnthropicAPIKey    = "ANTHROPIC_API_KEY"
	envAnthropicModel     = "ANTHROPIC_MODEL"
	defaultAnthropicModel = "claude-sonnet-4-5-20250929"

	anthropicAPIURL     = "https://api.anthropic.com/v1/messages"
	anthropicAPIVersion = "2023-06-01"
	anthropicMaxTokens  = 900
)

type anthropicClient struct {
	apiKey string
	model  string
	http   *http.Client
	logger zerolog.Logger
}

func newAnthropic(logger zerolog.Logger) (Client, error) {
	key := strings.TrimSpace(os.Getenv(envAnthropicAPIKey))
	if key == "" {
		return nil, fmt.Errorf("missing %s", envAnthropicAPIKey)
	}
	model := strings.Trim(strings.TrimSpace(os.Getenv(envAnthropicModel)), `"'`)
	if model == "" {
		model = defaultAnthropicModel
	}
	return &anthropicClient{
		apiKey: key,
		model:  model,
		http:   &http.Client{Timeout: requestTimeout},
		logger: logger.With().Str("provider", "anthropic").Logger(),
	}, nil
}

func (c *anthropicClient) Name() string { return c.model }

func (c *anthropicClient) Complete(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", fmt.Errorf("empty prompt")
	}
	payload := anthropicPayload{
		Model:       c.model,
		System:      req.System,
		MaxTokens:   anthropicMaxTokens,
		Temperature: req.Temperature,
		Messages: []anthropicMessage{{
			Role:    "user",
			Content: []anthropicContent{{Type: "text", Text: req.Prompt}},
		}},
	}
	if req.MaxTokens > 0 {
		payload.MaxTokens = req.MaxTokens
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			if err := backoff(ctx, attempt, c.logger); err != nil {
				return "", err
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicAPIURL, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("create request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("x-api-key", c.apiKey)
		httpReq.Header.Set("anthropic-version", anthropicAPIVersion)

		resp, err := c.http.Do(httpReq)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}
		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode >= 400 {
			var apiErr anthropicError
			_ = json.Unmarshal(data, &apiErr)
			lastErr = fmt.Errorf("anthropic %d: %s", resp.StatusCode, apiErr.describe(data))
			c.logger.Error().
				Int("status", resp.StatusCode).
				Str("error_type", apiErr.Type).
				Int("attempt", attempt).
				Msg("provider error")
			if retryable(resp.StatusCode) {
				continue
			}
			return "", lastErr
		}

		var ar anthropicResponse
		if err := json.Unmarshal(data, &ar); err != nil {
			lastErr = fmt.Errorf("parse response: %w", err)
			continue
		}
		var buf strings.Builder
		for _, content := range ar.Content {
			if content.Type == "text" {
				buf.WriteString(content.Text)
			}
		}
		if buf.Len() == 0 {
			return "", fmt.Errorf("empty response content")
		}
		c.logger.Debug().
			Str("response_preview", truncate(buf.String(), 200)).
			Msg("provider success")
		return buf.String(), nil
	}
	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}

type anthropicPayload struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
}

type anthropicMessage struct {
	Role    string             `json:"role"`
	Content []anthropicContent `json:"content"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
}

type anthropicError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (e anthropicError) describe(raw []byte) string {
	if e.Message != "" {
		return e.Message
	}
	return truncate(string(raw), 500)
}
