package lock

import "os"

// FileLock is a held exclusive advisory lock on a single path. It owns the
// file descriptor used to acquire the lock; that descriptor's lifetime
// equals the critical section it was acquired to protect.
type FileLock struct {
	path string
	file *os.File
}

// Path returns the filesystem path this lock is held on.
func (l *FileLock) Path() string {
	return l.path
}
