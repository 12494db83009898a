package launcher

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jebin2/neko-launcher/internal/allocator"
	"github.com/jebin2/neko-launcher/internal/model"
	"github.com/jebin2/neko-launcher/internal/process"
	"github.com/jebin2/neko-launcher/internal/profile"
)

// maxRunAttempts bounds the port/name-conflict retry loop.
const maxRunAttempts = 3

// screenshotStopTimeout bounds the screenshot-loop teardown step of
// Cleanup, after which the subprocess is force-killed.
const screenshotStopTimeout = 5 * time.Second

// subprocessStopTimeout bounds the captured subprocess teardown step of
// Cleanup, after which it is force-killed.
const subprocessStopTimeout = 5 * time.Second

// ContainerRuntime is every container-runtime operation the Launcher
// needs. *dockerq.Client satisfies it; tests substitute a fake so the
// retry/rollback/readiness logic is exercised without a live daemon.
type ContainerRuntime interface {
	allocator.RuntimeLister
	ImageExists(ctx context.Context, tag string) (bool, error)
	Kill(ctx context.Context, name string) error
	Remove(ctx context.Context, name string) error
	Exec(ctx context.Context, name string, argv []string, timeout time.Duration) (string, error)
	Run(ctx context.Context, cfg model.LaunchConfig) (stdout, stderr string, err error)
}

// ImageBuilder builds a missing image on demand. A Launcher with no
// ImageBuilder treats a missing image as immediately fatal rather than
// attempting a build it has no way to perform.
type ImageBuilder interface {
	Build(ctx context.Context, imageTag string) error
}

// LaunchResult is the (handle, ws_url) pair a successful launch returns,
// with the allocated ports surfaced typed rather than requiring callers to
// re-read LaunchConfig.
type LaunchResult struct {
	Handle       *process.Handle
	WebSocketURL string
	Ports        model.Allocation
}

// Launcher runs one container's full lifecycle against its collaborators.
type Launcher struct {
	Allocator *allocator.Allocator
	Runtime   ContainerRuntime
	Cleaner   *profile.Cleaner
	Builder   ImageBuilder
	Hooks     *process.ExitHookRegistry
}

// New builds a Launcher. builder may be nil — a nil builder makes a
// missing image fatal rather than attempting a build.
func New(alloc *allocator.Allocator, runtime ContainerRuntime, cleaner *profile.Cleaner, builder ImageBuilder, hooks *process.ExitHookRegistry) *Launcher {
	return &Launcher{
		Allocator: alloc,
		Runtime:   runtime,
		Cleaner:   cleaner,
		Builder:   builder,
		Hooks:     hooks,
	}
}

// Launch runs the full launch sequence: ensure image, stop any previous
// instance of this name, clean its profile, allocate ports, start the
// container with bounded conflict-retry, wait for the debug websocket to
// answer, optionally start the screenshot loop, register an exit hook, and
// return the handle and websocket URL. Any failure after ports are
// allocated releases them before returning.
func (l *Launcher) Launch(ctx context.Context, cfg model.LaunchConfig) (*LaunchResult, error) {
	if err := model.ValidateName(cfg.ContainerName); err != nil {
		return nil, err
	}

	if err := l.ensureImage(ctx, cfg.ImageTag); err != nil {
		return nil, err
	}

	if err := l.stopByName(ctx, cfg.ContainerName); err != nil {
		return nil, err
	}

	if l.Cleaner != nil && cfg.ProfileDir != "" {
		l.Cleaner.Clean(cfg.ProfileDir)
	}

	alloc, err := l.Allocator.Allocate(ctx, cfg.ContainerName)
	if err != nil {
		return nil, err
	}
	cfg.ServerPort = alloc.ServerPort
	cfg.DebugPort = alloc.DebugPort
	cfg.WebRTCStart = alloc.WebRTCStart

	if err := l.runWithRetry(ctx, &cfg); err != nil {
		l.releaseOnFailure(ctx, cfg.ContainerName)
		return nil, err
	}

	wsURL, err := pollReadiness(ctx, cfg.DebugPort, time.Duration(cfg.ConnectionTimeoutS)*time.Second)
	if err != nil {
		l.rollback(ctx, cfg.ContainerName)
		return nil, err
	}

	var screenshotCmd *screenshotProcess
	if cfg.TakeScreenshot {
		screenshotCmd = startScreenshotLoop(ctx, l.Runtime, cfg)
	}

	handle := process.NewHandle(cfg.ContainerName, alloc, screenshotCmd.command())

	if l.Hooks != nil {
		l.Hooks.Register(cfg.ContainerName, func(hookCtx context.Context) error {
			return l.Cleanup(hookCtx, cfg, handle)
		})
	}

	return &LaunchResult{Handle: handle, WebSocketURL: wsURL, Ports: alloc}, nil
}

// ensureImage implements step 1: invoke the build collaborator when the
// image is absent, failing the launch if building is impossible or fails.
func (l *Launcher) ensureImage(ctx context.Context, imageTag string) error {
	exists, err := l.Runtime.ImageExists(ctx, imageTag)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if l.Builder == nil {
		return model.WrapImageMissingError("", fmt.Sprintf("image %q is missing and no build collaborator is configured", imageTag), nil)
	}
	if err := l.Builder.Build(ctx, imageTag); err != nil {
		return model.WrapImageMissingError("", fmt.Sprintf("failed to build missing image %q", imageTag), err)
	}
	return nil
}

// stopByName implements launch step 2: if the runtime lists name, kill
// then remove it, then release its allocation — guaranteeing the
// subsequent allocate is not racing against this name's own previous
// instance.
func (l *Launcher) stopByName(ctx context.Context, name string) error {
	running, ok := l.Runtime.RunningNames(ctx)
	if ok {
		if _, present := running[name]; present {
			if err := l.Runtime.Kill(ctx, name); err != nil {
				return err
			}
			if err := l.Runtime.Remove(ctx, name); err != nil {
				return err
			}
		}
	}
	return l.Allocator.Release(ctx, name)
}

// releaseOnFailure releases name's ports after a failed run attempt,
// logging (not propagating) a release failure so the caller's original
// error is what surfaces.
func (l *Launcher) releaseOnFailure(ctx context.Context, name string) {
	if err := l.Allocator.Release(ctx, name); err != nil {
		logrus.WithError(err).WithField("container", name).Warn("failed to release ports after launch failure")
	}
}

// rollback runs when a fatal failure occurs after ports have been
// allocated and the container started: it stops the container and
// releases its ports before the failure surfaces to the caller.
func (l *Launcher) rollback(ctx context.Context, name string) {
	if err := l.Runtime.Kill(ctx, name); err != nil {
		logrus.WithError(err).WithField("container", name).Warn("rollback: failed to kill container")
	}
	if err := l.Runtime.Remove(ctx, name); err != nil {
		logrus.WithError(err).WithField("container", name).Warn("rollback: failed to remove container")
	}
	l.releaseOnFailure(ctx, name)
}

// Cleanup runs the idempotent teardown sequence: stop the screenshot
// loop, gracefully close the in-container browser, stop-by-name (which
// also releases ports), and terminate the captured subprocess handle.
// Every step swallows its own failure and logs it — a partial teardown
// must not block the rest.
func (l *Launcher) Cleanup(ctx context.Context, cfg model.LaunchConfig, handle *process.Handle) error {
	if handle != nil {
		if err := handle.Kill(screenshotStopTimeout); err != nil {
			logrus.WithError(err).WithField("container", cfg.ContainerName).Warn("cleanup: failed to stop screenshot loop")
		}
		unregisterScreenshotLoop(cfg.ContainerName)
	}

	gracefulClose(ctx, l.Runtime, cfg.ContainerName)

	if err := l.stopByName(ctx, cfg.ContainerName); err != nil {
		logrus.WithError(err).WithField("container", cfg.ContainerName).Warn("cleanup: stop_by_name failed")
	}

	if handle != nil {
		waitCtx, cancel := context.WithTimeout(ctx, subprocessStopTimeout)
		defer cancel()
		done := make(chan struct{})
		go func() {
			_ = handle.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-waitCtx.Done():
			logrus.WithField("container", cfg.ContainerName).Warn("cleanup: subprocess did not exit before timeout")
		}
	}

	if l.Hooks != nil {
		l.Hooks.Unregister(cfg.ContainerName)
	}

	return nil
}
