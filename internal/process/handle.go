package process

import (
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/jebin2/neko-launcher/internal/model"
)

// Handle tracks one launched container: its name, the port triple the
// Allocator assigned it, and the background screenshot-loop subprocess if
// ScreenshotLoop was started for it. ScreenshotCmd is nil when
// take_screenshot was false.
//
// exec.Cmd.Wait must be called exactly once for a given Cmd, so Handle
// owns a single background goroutine that calls it; Wait and Kill both
// observe its result through the done channel rather than calling Wait
// themselves.
type Handle struct {
	ContainerName string
	Allocation    model.Allocation
	ScreenshotCmd *exec.Cmd

	done    chan struct{}
	waitErr error

	mu     sync.Mutex
	killed bool
}

// NewHandle wraps a launched container and its optional screenshot-loop
// subprocess.
func NewHandle(name string, alloc model.Allocation, screenshotCmd *exec.Cmd) *Handle {
	h := &Handle{
		ContainerName: name,
		Allocation:    alloc,
		ScreenshotCmd: screenshotCmd,
		done:          make(chan struct{}),
	}
	if screenshotCmd == nil {
		close(h.done)
		return h
	}
	go func() {
		h.waitErr = screenshotCmd.Wait()
		close(h.done)
	}()
	return h
}

// Wait blocks until the screenshot-loop subprocess (if any) exits.
// Idempotent: safe to call from multiple goroutines and more than once.
func (h *Handle) Wait() error {
	<-h.done
	return h.waitErr
}

// Kill stops the screenshot-loop subprocess if one is running: SIGTERM,
// then SIGKILL if it is still alive after timeout. Idempotent and a no-op
// if there is no subprocess or it was already killed.
func (h *Handle) Kill(timeout time.Duration) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.killed || h.ScreenshotCmd == nil || h.ScreenshotCmd.Process == nil {
		h.killed = true
		return nil
	}
	h.killed = true

	proc := h.ScreenshotCmd.Process
	_ = proc.Signal(syscall.SIGTERM)

	select {
	case <-h.done:
		return nil
	case <-time.After(timeout):
		return proc.Kill()
	}
}
