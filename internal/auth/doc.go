// Package auth owns the lifecycle of Google OAuth credentials on disk.
//
// The Manager is the single writer of the token file. It persists credentials
// atomically (write-to-temp, verify, rename), serializes concurrent mutations
// through a per-path lock, keeps the refresh token sticky across refresh
// exchanges that omit one, and coordinates graceful shutdown so that an
// interrupted process never leaves a half-written token file behind.
//
// The sub-components (TempTracker, PathLocker, Registry, Retry) are exported
// so they can be tested in isolation, but they are wired together by the
// Manager and are not intended for standalone use.
package auth
