package process

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Shutdown must invoke every registered hook exactly once.
func TestShutdownRunsAllHooks(t *testing.T) {
	r := NewRegistry()
	var calls int32

	r.Register("neko-1", func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	r.Register("neko-2", func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	r.Shutdown(context.Background())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

// Shutdown is idempotent: calling it a second time must not re-run hooks.
func TestShutdownIsIdempotent(t *testing.T) {
	r := NewRegistry()
	var calls int32
	r.Register("neko-1", func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	r.Shutdown(context.Background())
	r.Shutdown(context.Background())

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

// Unregister removes a hook before Shutdown runs, so cleanup that already
// completed normally (Launcher.cleanup) is not redundantly repeated.
func TestUnregisterPreventsHookFromRunning(t *testing.T) {
	r := NewRegistry()
	var calls int32
	r.Register("neko-1", func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	r.Unregister("neko-1")

	r.Shutdown(context.Background())
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

// A hook that returns an error must not prevent the remaining hooks from
// running.
func TestShutdownContinuesAfterHookError(t *testing.T) {
	r := NewRegistry()
	var secondRan int32

	r.Register("neko-1", func(ctx context.Context) error {
		return assertError{}
	})
	r.Register("neko-2", func(ctx context.Context) error {
		atomic.AddInt32(&secondRan, 1)
		return nil
	})

	r.Shutdown(context.Background())
	assert.Equal(t, int32(1), atomic.LoadInt32(&secondRan))
}

type assertError struct{}

func (assertError) Error() string { return "simulated cleanup failure" }

// A Handle with no screenshot subprocess must report Wait/Kill as
// immediate no-ops.
func TestHandleWithNoSubprocessIsNoop(t *testing.T) {
	h := NewHandle("neko-1", testAllocation(), nil)

	assert.NoError(t, h.Wait())
	assert.NoError(t, h.Kill(time.Second))
}
