package profile

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Cleaner removes the singleton locks and caches a killed Chrome leaves
// behind in a user-data directory, and resets its exit state so the next
// launch doesn't show a "Restore pages?" prompt.
type Cleaner struct{}

// NewCleaner builds a Cleaner. It holds no state; every method takes the
// profile directory to act on.
func NewCleaner() *Cleaner {
	return &Cleaner{}
}

// Clean removes Singleton* lock files from profileDir and from Chrome's
// tmp-directory lock locations, removes the Extensions/ and GPUCache/
// subtrees, and rewrites Default/Preferences so exit_type is "Normal" and
// exited_cleanly is true. Every step is best-effort: a failure on one file
// is logged and does not stop the rest of the cleanup.
func (c *Cleaner) Clean(profileDir string) {
	c.fixExitState(profileDir)

	removeGlob(filepath.Join(profileDir, "Singleton*"))
	removeGlob("/tmp/.com.google.Chrome*/Singleton*")
	removeFile(filepath.Join(profileDir, "lockfile"))
	removeTree(filepath.Join(profileDir, "Extensions"))
	removeTree(filepath.Join(profileDir, "GPUCache"))
}

func removeGlob(pattern string) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		logrus.WithError(err).WithField("pattern", pattern).Warn("failed to glob profile lock files")
		return
	}
	for _, path := range matches {
		removeFile(path)
	}
}

func removeFile(path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return
	}
	if err := os.Remove(path); err != nil {
		logrus.WithError(err).WithField("path", path).Warn("failed to remove profile lock file")
		return
	}
	logrus.WithField("path", path).Debug("removed profile lock file")
}

func removeTree(path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return
	}
	if err := os.RemoveAll(path); err != nil {
		logrus.WithError(err).WithField("path", path).Warn("failed to remove profile cache directory")
		return
	}
	logrus.WithField("path", path).Debug("removed profile cache directory")
}

// fixExitState patches profileDir/Default/Preferences in place, leaving it
// untouched if it doesn't exist, is already clean, or fails to parse as
// JSON — a browser profile with a malformed Preferences file is not this
// cleaner's problem to fix.
func (c *Cleaner) fixExitState(profileDir string) {
	prefsPath := filepath.Join(profileDir, "Default", "Preferences")

	raw, err := os.ReadFile(prefsPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logrus.WithError(err).WithField("path", prefsPath).Warn("failed to read Preferences file")
		}
		return
	}

	var prefs map[string]interface{}
	if err := json.Unmarshal(raw, &prefs); err != nil {
		logrus.WithError(err).WithField("path", prefsPath).Warn("failed to parse Preferences file, leaving exit state untouched")
		return
	}

	profileSection, ok := prefs["profile"].(map[string]interface{})
	if !ok {
		profileSection = map[string]interface{}{}
		prefs["profile"] = profileSection
	}

	modified := false
	if profileSection["exit_type"] != "Normal" {
		profileSection["exit_type"] = "Normal"
		modified = true
	}
	if cleanly, _ := profileSection["exited_cleanly"].(bool); !cleanly {
		profileSection["exited_cleanly"] = true
		modified = true
	}

	if !modified {
		return
	}

	out, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		logrus.WithError(err).WithField("path", prefsPath).Warn("failed to serialize patched Preferences file")
		return
	}
	if err := os.WriteFile(prefsPath, out, 0o644); err != nil {
		logrus.WithError(err).WithField("path", prefsPath).Warn("failed to write patched Preferences file")
		return
	}
	logrus.WithField("path", prefsPath).Debug("reset Chrome exit state to Normal")
}
