package retrylimit

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type statusError int

func (s statusError) Error() string   { return fmt.Sprintf("http %d", int(s)) }
func (s statusError) StatusCode() int { return int(s) }

func fastConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    4,
		InitialDelay:   time.Millisecond,
		MaxDelay:       5 * time.Millisecond,
		RateLimitDelay: time.Millisecond,
		Multiplier:     2.0,
		Logger:         zerolog.Nop(),
	}
}

func TestWithRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("transient")
		}
		return nil
	}, nil, fastConfig())

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetryStopsOnFatalError(t *testing.T) {
	calls := 0
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		return &FatalError{Err: fmt.Errorf("bad request")}
	}, nil, fastConfig())

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		return fmt.Errorf("always failing")
	}, nil, fastConfig())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "max attempts")
	assert.Equal(t, 4, calls)
}

func TestWithRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetryConfig(ctx, func() error { return nil }, nil, fastConfig())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAdaptiveLimiterBacksOffAndRecovers(t *testing.T) {
	lim := NewAdaptiveLimiter(4, 1, 8, 1, 0.5)
	require.Equal(t, 4.0, lim.CurrentLimit())

	lim.RateLimited()
	assert.Equal(t, 2.0, lim.CurrentLimit())
	lim.RateLimited()
	lim.RateLimited()
	assert.Equal(t, 1.0, lim.CurrentLimit(), "clamped at the minimum")

	// Success right after an error does not speed back up.
	lim.Success()
	assert.Equal(t, 1.0, lim.CurrentLimit())
}

func TestAdaptiveLimiterClampsAtMax(t *testing.T) {
	lim := NewAdaptiveLimiter(8, 1, 8, 2, 0.5)
	lim.Success()
	assert.Equal(t, 8.0, lim.CurrentLimit())
}

func TestRateLimitedResponseReducesLimiter(t *testing.T) {
	lim := NewAdaptiveLimiter(rate.Limit(4), 1, 8, 1, 0.5)
	calls := 0

	err := WithRetryConfig(context.Background(), func() error {
		calls++
		if calls == 1 {
			return statusError(http.StatusTooManyRequests)
		}
		return nil
	}, lim, fastConfig())

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Less(t, lim.CurrentLimit(), 4.0)
}
