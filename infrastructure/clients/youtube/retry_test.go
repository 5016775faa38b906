package youtube

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"viral-clips/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func fastPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}
}

func TestRetryPolicy_SucceedsAfterTransientFailure(t *testing.T) {
	attempts := 0
	err := fastPolicy().Do(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return &googleapi.Error{Code: http.StatusServiceUnavailable}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryPolicy_ClientErrorIsFinal(t *testing.T) {
	attempts := 0
	err := fastPolicy().Do(context.Background(), func() error {
		attempts++
		return &googleapi.Error{Code: http.StatusBadRequest}
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrUpstreamUnavailable)
	assert.Equal(t, 1, attempts)
}

func TestRetryPolicy_ExhaustionWrapsUpstreamUnavailable(t *testing.T) {
	attempts := 0
	last := errors.New("connection reset")
	err := fastPolicy().Do(context.Background(), func() error {
		attempts++
		return last
	})
	assert.ErrorIs(t, err, model.ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, last)
	assert.Equal(t, 3, attempts)
}

func TestRetryPolicy_QuotaErrorIsFinal(t *testing.T) {
	attempts := 0
	err := fastPolicy().Do(context.Background(), func() error {
		attempts++
		return model.ErrQuotaExceeded
	})
	assert.ErrorIs(t, err, model.ErrQuotaExceeded)
	assert.Equal(t, 1, attempts)
}

func TestRetryPolicy_NotFoundIsFinalAndUnmasked(t *testing.T) {
	attempts := 0
	err := fastPolicy().Do(context.Background(), func() error {
		attempts++
		return model.ErrVideoNotFound
	})
	assert.ErrorIs(t, err, model.ErrVideoNotFound)
	assert.NotErrorIs(t, err, model.ErrUpstreamUnavailable)
	assert.Equal(t, 1, attempts)
}

func TestRetryPolicy_DeadlineMapsToUpstreamUnavailable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := fastPolicy().Do(ctx, func() error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, model.ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRetryPolicy_NotModifiedIsFinal(t *testing.T) {
	attempts := 0
	err := fastPolicy().Do(context.Background(), func() error {
		attempts++
		return model.ErrNotModified
	})
	assert.ErrorIs(t, err, model.ErrNotModified)
	assert.Equal(t, 1, attempts)
}

func TestRetryPolicy_ContextCancelStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := RetryPolicy{MaxAttempts: 5, BaseDelay: 50 * time.Millisecond}.Do(ctx, func() error {
		attempts++
		cancel()
		return errors.New("transient")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, model.ErrUpstreamUnavailable)
	assert.Equal(t, 1, attempts)
}
