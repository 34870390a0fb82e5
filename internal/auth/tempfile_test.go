package auth

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTempTrackerCreateUniquePaths(t *testing.T) {
	tracker := NewTempTracker(nil)
	base := filepath.Join(t.TempDir(), "default.json")

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		path := tracker.Create(base, "op-1")
		assert.False(t, seen[path], "duplicate temp path %s", path)
		seen[path] = true
		assert.True(t, strings.HasPrefix(path, base+"."))
		assert.True(t, strings.HasSuffix(path, ".tmp"))
	}
}

func TestTempTrackerOwnership(t *testing.T) {
	tracker := NewTempTracker(nil)
	base := filepath.Join(t.TempDir(), "default.json")

	path := tracker.Create(base, "op-1")
	assert.True(t, tracker.IsOwned(path))
	assert.False(t, tracker.IsOwned(base+".unknown.tmp"))

	tracker.Release(path)
	assert.False(t, tracker.IsOwned(path))
}

func TestTempTrackerReleaseOperation(t *testing.T) {
	tracker := NewTempTracker(nil)
	base := filepath.Join(t.TempDir(), "default.json")

	a := tracker.Create(base, "op-a")
	b := tracker.Create(base, "op-a")
	c := tracker.Create(base, "op-b")

	released := tracker.ReleaseOperation("op-a")
	assert.ElementsMatch(t, []string{a, b}, released)
	assert.False(t, tracker.IsOwned(a))
	assert.False(t, tracker.IsOwned(b))
	assert.True(t, tracker.IsOwned(c))

	assert.Empty(t, tracker.ReleaseOperation("op-a"))
}

func TestTempTrackerCleanupAll(t *testing.T) {
	tracker := NewTempTracker(nil)
	base := filepath.Join(t.TempDir(), "default.json")

	onDisk := tracker.Create(base, "op-1")
	require.NoError(t, os.WriteFile(onDisk, []byte("scratch"), 0o600))

	// A tracked path that never made it to disk must not fail cleanup.
	missing := tracker.Create(base, "op-2")

	tracker.CleanupAll()

	_, err := os.Stat(onDisk)
	assert.True(t, os.IsNotExist(err))
	assert.False(t, tracker.IsOwned(onDisk))
	assert.False(t, tracker.IsOwned(missing))
}
