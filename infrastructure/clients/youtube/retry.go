package youtube

import (
	"context"
	"errors"
	"net/http"
	"time"

	"viral-clips/domain/model"

	"google.golang.org/api/googleapi"
)

// RetryPolicy is the explicit retry contract for upstream calls: transient
// failures (network, 5xx) retry with exponential backoff; everything else
// fails immediately.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryPolicy matches the recommended bounds: 3 attempts, 200ms base.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 200 * time.Millisecond}
}

// Do runs fn up to MaxAttempts times. Exhausted retries and fired deadlines
// surface as model.ErrUpstreamUnavailable wrapping the underlying failure.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	var lastErr error
	delay := p.BaseDelay
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil || !retryable(lastErr) {
			return finalize(lastErr)
		}
		if attempt == p.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return finalize(ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}
	return errors.Join(model.ErrUpstreamUnavailable, lastErr)
}

// finalize maps a fired deadline or cancellation onto the
// upstream-unavailable sentinel so callers take the stale-cache fallback
// path. Every other final error passes through untouched.
func finalize(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errors.Join(model.ErrUpstreamUnavailable, err)
	}
	return err
}

// retryable classifies the closed error set: quota exhaustion and client
// errors are final, 5xx and transport failures are transient.
func retryable(err error) bool {
	if errors.Is(err, model.ErrQuotaExceeded) ||
		errors.Is(err, model.ErrNotModified) ||
		errors.Is(err, model.ErrVideoNotFound) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code >= http.StatusInternalServerError
	}
	// Non-HTTP failures are transport-level: worth another attempt.
	return true
}
