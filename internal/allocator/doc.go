// Package allocator implements the Allocator: the component that combines
// StateStore, FileLock, dockerq, and portprobe to assign and release unique,
// free port triples for container names, durably and under combined
// intra-process and inter-process mutual exclusion.
//
// Acquisition order is always the intra-process mutex first, then the file
// lock — never reversed — which is the sole rule needed to avoid deadlock
// between goroutines of this process and independent host processes
// sharing the same state file.
package allocator
