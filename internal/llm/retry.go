package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hassan123789/go-data-analyst/internal/logging"
)

// RetryConfig configures retry behavior.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
}

// DefaultRetryConfig returns sensible retry defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		BackoffFactor:  2.0,
	}
}

// RetryingClient wraps a Client and retries transient failures with
// exponential backoff.
type RetryingClient struct {
	next   Client
	cfg    RetryConfig
	logger *slog.Logger
}

// WithRetry decorates next with retries. A nil logger discards retry logs.
func WithRetry(next Client, cfg RetryConfig, logger *slog.Logger) *RetryingClient {
	if cfg.BackoffFactor < 1 {
		cfg.BackoffFactor = 1
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &RetryingClient{next: next, cfg: cfg, logger: logger}
}

// Chat executes a chat request with automatic retry.
func (c *RetryingClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	var lastErr error
	backoff := c.cfg.InitialBackoff

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Debug("retrying model call", "attempt", attempt, "backoff", backoff, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff = time.Duration(float64(backoff) * c.cfg.BackoffFactor)
			if c.cfg.MaxBackoff > 0 && backoff > c.cfg.MaxBackoff {
				backoff = c.cfg.MaxBackoff
			}
		}

		resp, err := c.next.Chat(ctx, req)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		if !isRetryableError(err) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// Close closes the wrapped client.
func (c *RetryingClient) Close() error {
	return c.next.Close()
}

// isRetryableError checks if an error should trigger a retry.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	errStr := strings.ToLower(err.Error())

	// Rate limit errors
	if containsAny(errStr, "rate limit", "429", "too many requests") {
		return true
	}

	// Server errors
	if containsAny(errStr, "500", "502", "503", "504", "server error", "overloaded") {
		return true
	}

	// Timeout errors
	if containsAny(errStr, "timeout", "deadline exceeded") {
		return true
	}

	// Connection errors
	if containsAny(errStr, "connection reset", "connection refused", "eof") {
		return true
	}

	return false
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
