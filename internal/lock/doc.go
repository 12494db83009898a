// Package lock implements the cross-process advisory exclusive lock that
// serializes Allocator access to the shared state file across independent
// host processes.
//
// Every Acquire opens a fresh OS file handle and flocks it; every Release
// unlocks and closes that same handle. Opening a fresh handle per
// acquisition (rather than caching one) matters: some flock
// implementations associate the lock with (process, inode) rather than
// (fd, inode), so a second acquisition from the same process on a reused
// handle would be granted immediately, silently breaking mutual exclusion
// between two threads of that process. Composing this with the
// intra-process mutex in package allocator closes that gap.
package lock
