package auth

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	defaultLockTimeout = 5 * time.Second
	defaultLockPoll    = 100 * time.Millisecond
)

// PathLocker provides named advisory locks keyed by file path. All
// read-modify-write sequences against the token file go through it, so two
// concurrent saves execute their critical sections one at a time.
//
// Locks are process-local only. Two Manager instances in the same process
// serialize correctly; independent processes sharing a token file do not.
type PathLocker struct {
	mu      sync.Mutex
	held    map[string]bool
	timeout time.Duration
	poll    time.Duration
}

// NewPathLocker creates a locker with the given acquisition timeout and poll
// interval. Zero values select the defaults (5s, 100ms).
func NewPathLocker(timeout, poll time.Duration) *PathLocker {
	if timeout <= 0 {
		timeout = defaultLockTimeout
	}
	if poll <= 0 {
		poll = defaultLockPoll
	}
	return &PathLocker{
		held:    make(map[string]bool),
		timeout: timeout,
		poll:    poll,
	}
}

// WithLock acquires the lock for path, runs fn, and releases the lock on
// every exit path. Acquisition polls until the timeout elapses; on timeout fn
// is never run and the call fails with ErrLockTimeout.
func (l *PathLocker) WithLock(ctx context.Context, path string, fn func() error) error {
	deadline := time.Now().Add(l.timeout)

	for {
		if l.tryAcquire(path) {
			break
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("acquiring lock for %s: %w", path, ErrLockTimeout)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("acquiring lock for %s: %w", path, ctx.Err())
		case <-time.After(l.poll):
		}
	}

	defer l.release(path)
	return fn()
}

func (l *PathLocker) tryAcquire(path string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[path] {
		return false
	}
	l.held[path] = true
	return true
}

func (l *PathLocker) release(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, path)
}
