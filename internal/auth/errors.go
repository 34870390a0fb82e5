package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrLockTimeout is returned when the per-path lock could not be
	// acquired within the configured timeout. The operation failed but the
	// manager is still usable; callers may retry later.
	ErrLockTimeout = errors.New("timed out waiting for token file lock")

	// ErrShuttingDown is returned when a new operation is requested after
	// shutdown has begun. This is expected during process exit, not a bug.
	ErrShuttingDown = errors.New("credential manager is shutting down")

	// ErrReauthRequired indicates the authorization server rejected the
	// refresh token (invalid or revoked grant). Interactive
	// re-authorization is required; retrying the refresh will not help.
	ErrReauthRequired = errors.New("refresh token rejected, re-authorization required")
)

// VerifyError reports that a freshly written token file failed the post-write
// read-back check. It is never retried: a write that does not round-trip
// indicates a deeper problem than a transient I/O hiccup.
type VerifyError struct {
	Path   string
	Reason string
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("token file verification failed for %s: %s", e.Path, e.Reason)
}
