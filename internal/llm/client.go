// Package llm talks to an external language-model provider for
// structured intent extraction. The package is an optional
// enhancement: every caller must be prepared for it to fail and fall
// back to deterministic parsing.
package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	envProvider = "LLM_PROVIDER" // "anthropic" or "openai"

	maxRetries     = 3
	retryBaseDelay = 500 * time.Millisecond
	requestTimeout = 60 * time.Second
)

// Client is one configured provider. Complete is a single-turn call:
// intent extraction never needs conversation state.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
}

type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// NewClient builds the named provider, reading its API key and model
// from the environment. An empty provider falls back to the
// LLM_PROVIDER variable, then to anthropic.
func NewClient(provider string, logger zerolog.Logger) (Client, error) {
	if provider == "" {
		provider = os.Getenv(envProvider)
	}
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", "anthropic":
		return newAnthropic(logger)
	case "openai":
		return newOpenAI(logger)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q (use anthropic or openai)", provider)
	}
}

// backoff sleeps before retry attempt n (1-based), doubling each time,
// unless the context ends first.
func backoff(ctx context.Context, attempt int, logger zerolog.Logger) error {
	delay := retryBaseDelay * time.Duration(1<<uint(attempt-1))
	logger.Info().Int("attempt", attempt).Dur("delay", delay).Msg("retrying provider call")
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

// retryable reports whether an HTTP status is worth another attempt:
// rate limits and server errors only, never other 4xx.
func retryable(status int) bool {
	return status == 429 || status >= 500
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
