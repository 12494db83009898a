package launcher

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// gracefulCloseStepTimeout bounds each exec call in the graceful-close
// sequence.
const gracefulCloseStepTimeout = 10 * time.Second

// gracefulCloseWait is the pause between the initial terminate signal and
// the SIGKILL sweep.
const gracefulCloseWait = 3 * time.Second

// gracefulCloseFinalWait is the pause after the SIGKILL sweep before
// returning control to the caller.
const gracefulCloseFinalWait = 1 * time.Second

// browserProcessPattern matches the browser process name inside the
// container image this launcher starts.
const browserProcessPattern = "chromium"

// gracefulClose sends a terminate signal to every in-container browser
// process if name is currently running (primary: killall; fallback:
// pkill -f, which signals every process whose command line matches), waits,
// then SIGKILLs survivors. It
// never returns an error — every step is best-effort and logged, so a
// wedged container never blocks the rest of Cleanup.
func gracefulClose(ctx context.Context, runtime ContainerRuntime, name string) {
	running, ok := runtime.RunningNames(ctx)
	if ok {
		if _, present := running[name]; !present {
			return
		}
	}

	if !terminateBrowserProcesses(ctx, runtime, name) {
		return
	}

	select {
	case <-time.After(gracefulCloseWait):
	case <-ctx.Done():
		return
	}

	killSurvivingBrowserProcesses(ctx, runtime, name)

	select {
	case <-time.After(gracefulCloseFinalWait):
	case <-ctx.Done():
	}
}

// terminateBrowserProcesses runs the primary killall broadcast, falling
// back to a pkill broadcast whenever the killall exec fails. Returns false
// when the pkill exec fails as well (for example the container is
// unreachable, or no process matched); gracefulClose then skips the wait
// and the SIGKILL sweep.
func terminateBrowserProcesses(ctx context.Context, runtime ContainerRuntime, name string) bool {
	execCtx, cancel := context.WithTimeout(ctx, gracefulCloseStepTimeout)
	defer cancel()

	if _, err := runtime.Exec(execCtx, name, []string{"killall", "-TERM", browserProcessPattern}, gracefulCloseStepTimeout); err == nil {
		return true
	}

	if _, err := runtime.Exec(execCtx, name, []string{"pkill", "-TERM", "-f", browserProcessPattern}, gracefulCloseStepTimeout); err != nil {
		logrus.WithError(err).WithField("container", name).Warn("graceful close: failed to signal browser processes")
		return false
	}
	return true
}

// killSurvivingBrowserProcesses force-kills any browser process that
// ignored the terminate signal.
func killSurvivingBrowserProcesses(ctx context.Context, runtime ContainerRuntime, name string) {
	execCtx, cancel := context.WithTimeout(ctx, gracefulCloseStepTimeout)
	defer cancel()

	if _, err := runtime.Exec(execCtx, name, []string{"killall", "-KILL", browserProcessPattern}, gracefulCloseStepTimeout); err == nil {
		return
	}
	if _, err := runtime.Exec(execCtx, name, []string{"pkill", "-KILL", "-f", browserProcessPattern}, gracefulCloseStepTimeout); err != nil {
		logrus.WithError(err).WithField("container", name).Warn("graceful close: failed to force-kill surviving browser processes")
	}
}
