package allocator

import (
	"context"
	"fmt"
	"sync"

	"github.com/jebin2/neko-launcher/internal/lock"
	"github.com/jebin2/neko-launcher/internal/model"
	"github.com/jebin2/neko-launcher/internal/portprobe"
	"github.com/jebin2/neko-launcher/internal/state"
)

// RuntimeLister is the container-runtime collaborator the Allocator needs:
// the set of names currently running, or ok=false if the runtime could not
// be reached at all. *dockerq.Client satisfies this; tests substitute a
// fake so the dead-allocation reaper can be exercised without a live
// Docker daemon.
type RuntimeLister interface {
	RunningNames(ctx context.Context) (map[string]struct{}, bool)
}

// Allocator produces a unique, free port triple for a container name and
// durably records it. Allocate, Release and Reap each acquire the
// intra-process mutex M, then the cross-process FileLock F, in that fixed
// order (Snapshot takes M only) — the only
// ordering rule needed to keep this process's goroutines and independent
// host processes from deadlocking over the same state file.
type Allocator struct {
	store    *state.Store
	lockPath string
	docker   RuntimeLister
	prober   *portprobe.Prober

	mu sync.Mutex
}

// New builds an Allocator. statePath and lockPath are typically
// NEKO_PORT_STATE_FILE and NEKO_PORT_LOCK_FILE (or their defaults) —
// injected here, not read from the environment, so tests can point both at
// a temp directory.
func New(statePath, lockPath string, docker RuntimeLister, prober *portprobe.Prober) *Allocator {
	return &Allocator{
		store:    state.New(statePath),
		lockPath: lockPath,
		docker:   docker,
		prober:   prober,
	}
}

// Allocate assigns a fresh, free (server, debug, webrtc_start) triple to
// name, persists it, and returns it. Re-allocating an already-allocated
// name drops the stale entry first rather than returning the existing
// triple — callers that want idempotent re-use call Release then Allocate,
// or rely on Launcher's stop_by_name to have already released it.
func (a *Allocator) Allocate(ctx context.Context, name string) (model.Allocation, error) {
	if err := model.ValidateName(name); err != nil {
		return model.Allocation{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	fl, err := lock.Acquire(a.lockPath)
	if err != nil {
		return model.Allocation{}, model.WrapRuntimeUnavailable(name, "failed to acquire allocator lock", err)
	}
	defer func() { _ = fl.Release() }()

	doc := a.store.Read()

	// Reap dead allocations. UNKNOWN (runtime unreachable) means skip
	// reaping entirely — prefer a stale-but-safe entry over wrongly
	// reclaiming a port still in use by a container we can't currently see.
	if running, ok := a.docker.RunningNames(ctx); ok {
		for key := range doc.Allocations {
			if _, isRunning := running[key]; !isRunning {
				delete(doc.Allocations, key)
			}
		}
	}

	if doc.IsEmpty() {
		doc.ResetCursors()
	}

	// Drop name's own stale allocation inline, without re-entering the
	// locks already held — release's logic is factored into releaseFromDoc,
	// an unlocked helper operating purely on the in-memory Document.
	releaseFromDoc(doc, name)

	excludedServer := make(map[uint16]struct{}, len(doc.Allocations))
	excludedDebug := make(map[uint16]struct{}, len(doc.Allocations))
	excludedWebRTCStarts := make([]uint16, 0, len(doc.Allocations))
	for _, alloc := range doc.Allocations {
		excludedServer[alloc.ServerPort] = struct{}{}
		excludedDebug[alloc.DebugPort] = struct{}{}
		excludedWebRTCStarts = append(excludedWebRTCStarts, alloc.WebRTCStart)
	}

	serverPort, err := a.prober.FindFreeTCP(doc.NextServerPort, excludedServer)
	if err != nil {
		return model.Allocation{}, fmt.Errorf("allocating server port for %q: %w", name, err)
	}
	debugPort, err := a.prober.FindFreeTCP(doc.NextDebugPort, excludedDebug)
	if err != nil {
		return model.Allocation{}, fmt.Errorf("allocating debug port for %q: %w", name, err)
	}
	webrtcStart, err := a.prober.FindFreeUDPRange(doc.NextWebRTCPort, excludedWebRTCStarts, model.WebRTCRangeSize)
	if err != nil {
		return model.Allocation{}, fmt.Errorf("allocating webrtc range for %q: %w", name, err)
	}

	alloc := model.Allocation{
		ServerPort:  serverPort,
		DebugPort:   debugPort,
		WebRTCStart: webrtcStart,
	}
	doc.Allocations[name] = alloc
	doc.NextServerPort = serverPort + 1
	doc.NextDebugPort = debugPort + 1
	doc.NextWebRTCPort = webrtcStart + model.WebRTCRangeSize

	if err := a.store.Write(doc); err != nil {
		return model.Allocation{}, model.WrapRuntimeUnavailable(name, "failed to persist allocation", err)
	}

	return alloc, nil
}

// Release drops name's allocation if present, resetting the search cursors
// if the allocation map becomes empty. Idempotent: releasing an
// unallocated name is a no-op, not an error.
func (a *Allocator) Release(ctx context.Context, name string) error {
	if err := model.ValidateName(name); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	fl, err := lock.Acquire(a.lockPath)
	if err != nil {
		return model.WrapRuntimeUnavailable(name, "failed to acquire allocator lock", err)
	}
	defer func() { _ = fl.Release() }()

	doc := a.store.Read()
	if !releaseFromDoc(doc, name) {
		return nil
	}
	if doc.IsEmpty() {
		doc.ResetCursors()
	}
	if err := a.store.Write(doc); err != nil {
		return model.WrapRuntimeUnavailable(name, "failed to persist release", err)
	}
	return nil
}

// Reap forces the same dead-allocation sweep Allocate performs inline
// (dropping any allocation whose name the runtime no longer lists as
// running) without allocating anything new. It returns the names dropped.
// Like Allocate, an unreachable runtime (ok=false) skips the sweep
// entirely rather than reclaiming ports it can't confirm are free.
func (a *Allocator) Reap(ctx context.Context) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	fl, err := lock.Acquire(a.lockPath)
	if err != nil {
		return nil, model.WrapRuntimeUnavailable("", "failed to acquire allocator lock", err)
	}
	defer func() { _ = fl.Release() }()

	doc := a.store.Read()

	running, ok := a.docker.RunningNames(ctx)
	if !ok {
		return nil, nil
	}

	var reaped []string
	for key := range doc.Allocations {
		if _, isRunning := running[key]; !isRunning {
			delete(doc.Allocations, key)
			reaped = append(reaped, key)
		}
	}

	if len(reaped) == 0 {
		return nil, nil
	}

	if doc.IsEmpty() {
		doc.ResetCursors()
	}

	if err := a.store.Write(doc); err != nil {
		return nil, model.WrapRuntimeUnavailable("", "failed to persist reap sweep", err)
	}

	return reaped, nil
}

// Snapshot returns every current allocation, annotated with whether the
// runtime currently lists the container as running. Used by the CLI's
// list subcommand; takes the intra-process mutex but no file lock since it
// only reads.
func (a *Allocator) Snapshot(ctx context.Context) []model.AllocationSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	doc := a.store.Read()
	running, ok := a.docker.RunningNames(ctx)

	out := make([]model.AllocationSnapshot, 0, len(doc.Allocations))
	for name, alloc := range doc.Allocations {
		_, isRunning := running[name]
		out = append(out, model.AllocationSnapshot{
			ContainerName: name,
			Allocation:    alloc,
			// If the runtime is unreachable, report not-running rather than
			// guessing — this is a read-only diagnostic view, unlike
			// Allocate's reaping step it does not need to err toward safety.
			Running: ok && isRunning,
		})
	}
	return out
}

// releaseFromDoc drops name's allocation from doc in memory, with no
// locking or I/O of its own. It is the internal helper both Release and
// Allocate's stale-self-drop step funnel through, so the drop logic exists
// exactly once regardless of which lock-holding caller needs it — release
// must be callable from inside allocate without re-entering the locks
// already held.
func releaseFromDoc(doc *state.Document, name string) bool {
	if _, ok := doc.Allocations[name]; !ok {
		return false
	}
	delete(doc.Allocations, name)
	return true
}
