package oracle

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"net"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/chainguard-dev/clog"
	"github.com/openai/openai-go"
)

// RetryConfig controls retries of transient oracle failures
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt (0 disables retrying)
	MaxRetries int

	// BaseBackoff is the delay before the first retry
	BaseBackoff time.Duration

	// MaxBackoff caps the exponential backoff
	MaxBackoff time.Duration

	// MaxJitter is the upper bound of random delay added to each backoff
	MaxJitter time.Duration
}

// DefaultRetryConfig retries rate limits and server errors twice
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:  2,
		BaseBackoff: 2 * time.Second,
		MaxBackoff:  30 * time.Second,
		MaxJitter:   500 * time.Millisecond,
	}
}

// retryWithBackoff calls fn until it succeeds, returns a non-retryable
// error, or runs out of retries. It returns the number of attempts made.
func retryWithBackoff[T any](ctx context.Context, cfg RetryConfig, fn func(context.Context) (T, error)) (T, int, error) {
	var (
		result  T
		lastErr error
	)

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, lastErr = fn(ctx)
		if lastErr == nil {
			return result, attempt + 1, nil
		}
		if !isRetryable(lastErr) || attempt >= cfg.MaxRetries {
			return result, attempt + 1, lastErr
		}

		backoff := min(cfg.BaseBackoff<<attempt, cfg.MaxBackoff)
		backoff += jitter(cfg.MaxJitter)

		clog.FromContext(ctx).With("attempt", attempt+1).
			With("max_retries", cfg.MaxRetries).
			With("backoff", backoff).
			With("error", lastErr.Error()).
			Warn("Oracle call failed, retrying")

		select {
		case <-ctx.Done():
			return result, attempt + 1, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return result, cfg.MaxRetries + 1, lastErr
}

func jitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(limit)))
	if err != nil {
		return 0
	}
	return time.Duration(n.Int64())
}

// isRetryable reports whether err is a rate limit, a server error, or a
// network failure. Context expiry is never retried.
func isRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) {
		return retryableStatus(openaiErr.StatusCode)
	}

	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) {
		return retryableStatus(anthropicErr.StatusCode)
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
