//go:build unix

package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// Acquire blocks until an exclusive advisory lock on path is held by this
// process, opening a fresh file handle for the attempt. The OS releases the
// lock automatically if the holder dies or its handle is closed, so no
// stale-lock recovery is needed on crash.
func Acquire(path string) (*FileLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory for lock file %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file %s: %w", path, err)
	}

	// LOCK_EX without LOCK_NB blocks until the lock is free. Flock on a
	// freshly opened fd, never a cached one — see package doc for why.
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to acquire lock on %s: %w", path, err)
	}

	return &FileLock{path: path, file: f}, nil
}

// Release drops the lock and closes the file handle that held it. Release
// is idempotent: calling it more than once, or on a lock that failed to
// acquire, is a safe no-op.
func (l *FileLock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	f := l.file
	l.file = nil
	_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	return f.Close()
}
