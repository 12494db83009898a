package profile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Clean removes a Singleton* lock file sitting directly in the profile
// directory.
func TestCleanRemovesSingletonLockFiles(t *testing.T) {
	dir := t.TempDir()
	lockPath := filepath.Join(dir, "SingletonLock")
	require.NoError(t, os.WriteFile(lockPath, []byte("x"), 0o644))

	NewCleaner().Clean(dir)

	_, err := os.Stat(lockPath)
	assert.True(t, os.IsNotExist(err))
}

// Clean removes the top-level lockfile, Extensions/, and GPUCache/ entries
// without touching unrelated files.
func TestCleanRemovesLockfileAndCacheDirs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lockfile"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Extensions", "abc"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "GPUCache"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("x"), 0o644))

	NewCleaner().Clean(dir)

	_, err := os.Stat(filepath.Join(dir, "lockfile"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "Extensions"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "GPUCache"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "keep.txt"))
	assert.NoError(t, err)
}

// A crashed session leaves exit_type "Crashed" in Preferences; Clean
// resets it to "Normal" and sets exited_cleanly true.
func TestCleanFixesCrashedExitState(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Default"), 0o755))
	prefsPath := filepath.Join(dir, "Default", "Preferences")
	require.NoError(t, os.WriteFile(prefsPath, []byte(`{"profile":{"exit_type":"Crashed","exited_cleanly":false},"other_key":"preserved"}`), 0o644))

	NewCleaner().Clean(dir)

	raw, err := os.ReadFile(prefsPath)
	require.NoError(t, err)
	var prefs map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &prefs))

	profileSection := prefs["profile"].(map[string]interface{})
	assert.Equal(t, "Normal", profileSection["exit_type"])
	assert.Equal(t, true, profileSection["exited_cleanly"])
	assert.Equal(t, "preserved", prefs["other_key"])
}

// An already-clean Preferences file is left byte-for-byte untouched.
func TestCleanLeavesAlreadyCleanPreferencesUntouched(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Default"), 0o755))
	prefsPath := filepath.Join(dir, "Default", "Preferences")
	original := []byte(`{"profile":{"exit_type":"Normal","exited_cleanly":true}}`)
	require.NoError(t, os.WriteFile(prefsPath, original, 0o644))
	info, err := os.Stat(prefsPath)
	require.NoError(t, err)
	modTimeBefore := info.ModTime()

	NewCleaner().Clean(dir)

	after, err := os.Stat(prefsPath)
	require.NoError(t, err)
	assert.Equal(t, modTimeBefore, after.ModTime())
}

// A malformed Preferences file is left alone rather than causing a panic
// or data loss.
func TestCleanToleratesMalformedPreferences(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Default"), 0o755))
	prefsPath := filepath.Join(dir, "Default", "Preferences")
	require.NoError(t, os.WriteFile(prefsPath, []byte("not json"), 0o644))

	assert.NotPanics(t, func() { NewCleaner().Clean(dir) })

	raw, err := os.ReadFile(prefsPath)
	require.NoError(t, err)
	assert.Equal(t, "not json", string(raw))
}

// A profile directory with no Default/Preferences file at all is a no-op
// for the exit-state fix, not an error.
func TestCleanToleratesMissingPreferences(t *testing.T) {
	dir := t.TempDir()
	assert.NotPanics(t, func() { NewCleaner().Clean(dir) })
}
