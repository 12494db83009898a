// Package state persists the allocator's Document — the current port
// allocations and search cursors — to a JSON file on disk.
//
// Reads never fail: a missing or malformed file yields a fresh default
// Document. Writes are atomic from any concurrent reader's perspective,
// implemented via a temp-file-then-rename swap so a crash mid-write never
// leaves a truncated file in place. Callers are responsible for holding the
// FileLock/intra-process mutex around a read-modify-write cycle; StateStore
// itself has no locking of its own.
package state
