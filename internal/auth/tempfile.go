package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/logging"
)

// TempTracker hands out unique scratch-file names for staged writes and
// remembers which paths belong to which operation, so an interrupted write
// can be identified and reclaimed during shutdown.
//
// Create only does in-memory bookkeeping; actually creating the file is the
// caller's responsibility.
type TempTracker struct {
	mu     sync.Mutex
	owned  map[string]string // temp path -> operation id
	logger logging.Logger
}

// NewTempTracker creates an empty tracker. A nil logger falls back to the
// default slog adapter.
func NewTempTracker(logger logging.Logger) *TempTracker {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &TempTracker{
		owned:  make(map[string]string),
		logger: logger,
	}
}

// Create returns a fresh scratch path derived from basePath and records it
// under operationID. The suffix combines a nanosecond timestamp with random
// bytes so concurrent callers never collide.
func (t *TempTracker) Create(basePath, operationID string) string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand failing is effectively unheard of; the timestamp
		// alone still keeps sequential callers apart.
		t.logger.Warn("random suffix generation failed, using timestamp only", "error", err.Error())
	}
	path := fmt.Sprintf("%s.%d-%s.tmp", basePath, time.Now().UnixNano(), hex.EncodeToString(buf[:]))

	t.mu.Lock()
	defer t.mu.Unlock()
	t.owned[path] = operationID
	return path
}

// IsOwned reports whether path was handed out by this tracker and has not
// been released yet.
func (t *TempTracker) IsOwned(path string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.owned[path]
	return ok
}

// Release stops tracking path without touching the filesystem.
func (t *TempTracker) Release(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.owned, path)
}

// ReleaseOperation releases every path owned by operationID and returns the
// released paths. Used by the registry to reclaim scratch files of operations
// that did not settle before the shutdown deadline.
func (t *TempTracker) ReleaseOperation(operationID string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var released []string
	for path, id := range t.owned {
		if id == operationID {
			released = append(released, path)
			delete(t.owned, path)
		}
	}
	return released
}

// CleanupAll deletes every tracked path from disk, best-effort. Missing files
// are fine; any other deletion failure is logged and swallowed, since losing
// a scratch file is never worth failing shutdown over.
func (t *TempTracker) CleanupAll() {
	t.mu.Lock()
	paths := make([]string, 0, len(t.owned))
	for path := range t.owned {
		paths = append(paths, path)
	}
	t.owned = make(map[string]string)
	t.mu.Unlock()

	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			t.logger.Warn("failed to remove temp file during cleanup", "path", path, "error", err.Error())
		}
	}
}
