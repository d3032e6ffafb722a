package notion

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"time"
)

// RetryConfig configures retry behavior for transient API failures.
type RetryConfig struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

// DefaultRetryConfig returns sensible defaults for rate limit retries.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 5,
		BaseBackoff: 1 * time.Second,
		MaxBackoff:  30 * time.Second,
	}
}

// retryAfterError wraps an APIError with the server's requested delay.
type retryAfterError struct {
	*APIError
	after time.Duration
}

func (e *retryAfterError) Unwrap() error { return e.APIError }

func withRetryAfter(apiErr *APIError, resp *http.Response) error {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
			return &retryAfterError{APIError: apiErr, after: time.Duration(secs) * time.Second}
		}
	}
	return apiErr
}

// withRetry runs fn until it succeeds, fails permanently, or attempts run
// out. fn reports whether its error is worth retrying.
func withRetry(ctx context.Context, config RetryConfig, fn func() (retryable bool, err error)) error {
	var lastErr error

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		retryable, err := fn()
		if err == nil {
			return nil
		}
		if !retryable {
			return err
		}
		lastErr = err

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt == config.MaxAttempts {
			break
		}

		select {
		case <-time.After(backoffFor(config, attempt, err)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

// backoffFor computes the next delay: the server's Retry-After when
// given, otherwise exponential backoff with ±25% jitter.
func backoffFor(config RetryConfig, attempt int, err error) time.Duration {
	var ra *retryAfterError
	if errors.As(err, &ra) {
		return ra.after
	}

	backoff := time.Duration(float64(config.BaseBackoff) * math.Pow(2, float64(attempt-1)))
	if backoff > config.MaxBackoff {
		backoff = config.MaxBackoff
	}
	jitter := 0.75 + rand.Float64()*0.5
	return time.Duration(float64(backoff) * jitter)
}

// retryableStatus reports whether an HTTP status is a transient failure.
func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// retryableNetErr reports whether a transport error is worth retrying.
func retryableNetErr(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
