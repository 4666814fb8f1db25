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
	envOpenAIAPIKey    = "OPENAI_API_KEY"
	envOpenAIModel     = "OPENAI_MODEL"
	defaultOpenAIModel = "gpt-4o-mini"

	openAIAPIURL    = "https://api.openai.com/v1/chat/completions"
	openAIMaxTokens = 900
)

type openAIClient struct {
	apiKey string
	model  string
	http   *http.Client
	logger zerolog.Logger
}

func newOpenAI(logger zerolog.Logger) (Client, error) {
	key := strings.TrimSpace(os.Getenv(envOpenAIAPIKey))
	if key == "" {
		return nil, fmt.Errorf("missing %s", envOpenAIAPIKey)
	}
	model := strings.Trim(strings.TrimSpace(os.Getenv(envOpenAIModel)), `"'`)
	if model == "" {
		model = defaultOpenAIModel
	}
	return &openAIClient{
		apiKey: key,
		model:  model,
		http:   &http.Client{Timeout: requestTimeout},
		logger: logger.With().Str("provider", "openai").Logger(),
	}, nil
}

func (c *openAIClient) Name() string { return c.model }

func (c *openAIClient) Complete(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", fmt.Errorf("empty prompt")
	}
	messages := make([]openAIMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: req.Prompt})

	payload := openAIPayload{
		Model:       c.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   openAIMaxTokens,
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

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIAPIURL, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("create request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

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
			var apiResp openAIResponse
			_ = json.Unmarshal(data, &apiResp)
			msg := truncate(string(data), 500)
			if apiResp.Error != nil && apiResp.Error.Message != "" {
				msg = apiResp.Error.Message
			}
			lastErr = fmt.Errorf("openai %d: %s", resp.StatusCode, msg)
			c.logger.Error().
				Int("status", resp.StatusCode).
				Int("attempt", attempt).
				Msg("provider error")
			if retryable(resp.StatusCode) {
				continue
			}
			return "", lastErr
		}

		var apiResp openAIResponse
		if err := json.Unmarshal(data, &apiResp); err != nil {
			lastErr = fmt.Errorf("parse response: %w", err)
			continue
		}
		if len(apiResp.Choices) == 0 || apiResp.Choices[0].Message.Content == "" {
			return "", fmt.Errorf("empty response content")
		}
		text := apiResp.Choices[0].Message.Content
		c.logger.Debug().
			Str("response_preview", truncate(text, 200)).
			Msg("provider success")
		return text, nil
	}
	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}

type openAIPayload struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}
