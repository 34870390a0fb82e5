package auth

import (
	"context"
	"time"
)

const (
	defaultRetryAttempts = 3
	defaultRetryDelay    = 100 * time.Millisecond
)

// Retry runs fn up to attempts times, sleeping delay between attempts. The
// delay is fixed: this exists to ride out momentary filesystem contention
// (antivirus scanners, concurrent access), not to back off a remote service.
//
// The error from the final attempt is returned unmodified. If the context is
// cancelled while waiting, the last attempt's error is returned rather than
// the context error, so callers see what actually went wrong.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(delay):
		}
	}
	return err
}
