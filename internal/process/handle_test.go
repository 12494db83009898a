package process

import (
	"os/exec"
	"testing"
	"time"

	"github.com/jebin2/neko-launcher/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAllocation() model.Allocation {
	return model.Allocation{ServerPort: 8081, DebugPort: 9224, WebRTCStart: 52000}
}

// Wait blocks until the wrapped subprocess exits and is safe to call more
// than once, returning the same result each time.
func TestHandleWaitReturnsAfterSubprocessExits(t *testing.T) {
	cmd := exec.Command("sh", "-c", "exit 0")
	require.NoError(t, cmd.Start())

	h := NewHandle("neko-1", testAllocation(), cmd)

	require.NoError(t, h.Wait())
	require.NoError(t, h.Wait())
}

// Kill on a long-running subprocess sends SIGTERM and the subprocess exits
// before the timeout elapses, so Kill returns without escalating to
// SIGKILL.
func TestHandleKillStopsRunningSubprocess(t *testing.T) {
	cmd := exec.Command("sh", "-c", "trap 'exit 0' TERM; while true; do sleep 0.05; done")
	require.NoError(t, cmd.Start())

	h := NewHandle("neko-1", testAllocation(), cmd)

	err := h.Kill(2 * time.Second)
	assert.NoError(t, err)

	select {
	case <-h.done:
	case <-time.After(2 * time.Second):
		t.Fatal("subprocess did not exit after Kill")
	}
}

// Kill is idempotent: calling it twice on an already-killed Handle must not
// panic or block.
func TestHandleKillIsIdempotent(t *testing.T) {
	cmd := exec.Command("sh", "-c", "trap 'exit 0' TERM; while true; do sleep 0.05; done")
	require.NoError(t, cmd.Start())

	h := NewHandle("neko-1", testAllocation(), cmd)

	require.NoError(t, h.Kill(2*time.Second))
	assert.NoError(t, h.Kill(2*time.Second))
}

// A subprocess that ignores SIGTERM is force-killed once the timeout
// elapses.
func TestHandleKillEscalatesToSigkillAfterTimeout(t *testing.T) {
	cmd := exec.Command("sh", "-c", "trap '' TERM; while true; do sleep 0.05; done")
	require.NoError(t, cmd.Start())

	h := NewHandle("neko-1", testAllocation(), cmd)

	start := time.Now()
	err := h.Kill(200 * time.Millisecond)
	elapsed := time.Since(start)

	assert.NoError(t, err)
	assert.GreaterOrEqual(t, elapsed, 200*time.Millisecond)

	select {
	case <-h.done:
	case <-time.After(2 * time.Second):
		t.Fatal("subprocess survived SIGKILL")
	}
}
