package process

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

// CleanupHook is a registered container teardown closure: kill, remove,
// release ports for one container name.
type CleanupHook func(ctx context.Context) error

// hookTimeout bounds a single cleanup hook during signal-triggered
// shutdown, so one wedged container teardown can't block the rest.
const hookTimeout = 10 * time.Second

// ExitHookRegistry runs registered cleanup closures when the process
// receives SIGINT/SIGTERM (once InstallSignalHandler has been called), or
// when Shutdown is called explicitly by the embedding program. It is
// guarded by its own mutex, distinct from the Allocator's intra-process
// mutex — the two serve unrelated resources.
type ExitHookRegistry struct {
	mu    sync.Mutex
	hooks map[string]CleanupHook
	once  sync.Once
}

// globalRegistry is the process-wide singleton every Launcher.launch call
// registers against.
var globalRegistry = NewRegistry()

// Global returns the process-wide ExitHookRegistry.
func Global() *ExitHookRegistry {
	return globalRegistry
}

// NewRegistry builds an independent registry. Production code uses the
// Global() singleton; tests use NewRegistry so they don't share state or
// race on the package-level instance.
func NewRegistry() *ExitHookRegistry {
	return &ExitHookRegistry{hooks: make(map[string]CleanupHook)}
}

// Register adds a cleanup hook for name, overwriting any previous hook
// under the same name.
func (r *ExitHookRegistry) Register(name string, hook CleanupHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[name] = hook
}

// Unregister removes name's cleanup hook. Called once Launcher.cleanup has
// completed normally for that container, so a later signal or Shutdown
// does not redundantly tear it down again.
func (r *ExitHookRegistry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.hooks, name)
}

// InstallSignalHandler starts a background goroutine that runs every
// registered hook on the first SIGINT or SIGTERM, then re-raises the
// signal's default behavior by exiting with a conventional signal-based
// status. Call once from main().
func (r *ExitHookRegistry) InstallSignalHandler() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logrus.WithField("signal", sig).Warn("received signal, running exit hooks")
		r.Shutdown(context.Background())
		os.Exit(128 + signalNumber(sig))
	}()
}

// Shutdown runs every registered hook to completion (each bounded by
// hookTimeout) and clears the registry. Safe to call more than once; only
// the first call does any work.
func (r *ExitHookRegistry) Shutdown(ctx context.Context) {
	r.once.Do(func() {
		r.mu.Lock()
		hooks := r.hooks
		r.hooks = make(map[string]CleanupHook)
		r.mu.Unlock()

		for name, hook := range hooks {
			hookCtx, cancel := context.WithTimeout(ctx, hookTimeout)
			if err := hook(hookCtx); err != nil {
				logrus.WithError(err).WithField("container", name).Error("exit hook cleanup failed")
			}
			cancel()
		}
	})
}

// signalNumber extracts the numeric signal value for the conventional
// 128+n exit status; falls back to 1 for a signal type it doesn't
// recognize.
func signalNumber(sig os.Signal) int {
	if s, ok := sig.(syscall.Signal); ok {
		return int(s)
	}
	return 1
}
