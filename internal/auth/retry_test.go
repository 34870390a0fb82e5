package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryReturnsLastErrorUnmodified(t *testing.T) {
	sentinel := errors.New("still broken")
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return sentinel
	})
	assert.Equal(t, 3, calls)
	// Identity, not just wrapping: callers match on the original error.
	assert.Same(t, sentinel, err)
}

func TestRetryZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 0, time.Millisecond, func() error {
		calls++
		return errors.New("nope")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryCancelledContextReturnsAttemptError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sentinel := errors.New("attempt failed")
	calls := 0
	err := Retry(ctx, 5, 50*time.Millisecond, func() error {
		calls++
		return sentinel
	})
	// The attempt's own error wins over the context error.
	assert.Same(t, sentinel, err)
	assert.Equal(t, 1, calls)
}
