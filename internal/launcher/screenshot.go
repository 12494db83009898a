package launcher

import (
	"context"
	"fmt"
	"os/exec"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/jebin2/neko-launcher/internal/model"
)

// runningScreenshotLoops tracks container names with an active screenshot
// loop, enforcing a single loop per container name. Cleared by
// unregisterScreenshotLoop once Launcher.Cleanup tears the loop down.
var (
	runningScreenshotLoopsMu sync.Mutex
	runningScreenshotLoops   = make(map[string]struct{})
)

// screenshotProcess wraps the background bash loop process.Handle tracks,
// or nil when no loop was started (take_screenshot was false, or one was
// already running for this name).
type screenshotProcess struct {
	cmd *exec.Cmd
}

func (s *screenshotProcess) command() *exec.Cmd {
	if s == nil {
		return nil
	}
	return s.cmd
}

// startScreenshotLoop starts a single bash subprocess that, every interval
// seconds, screenshots the container into /tmp, copies it out, and
// atomically renames it into place so external consumers never observe a
// truncated image. A subprocess rather than a goroutine, since
// process.Handle's Kill/Wait contract is built around exec.Cmd.
func startScreenshotLoop(ctx context.Context, runtime ContainerRuntime, cfg model.LaunchConfig) *screenshotProcess {
	runningScreenshotLoopsMu.Lock()
	if _, alreadyRunning := runningScreenshotLoops[cfg.ContainerName]; alreadyRunning {
		runningScreenshotLoopsMu.Unlock()
		logrus.WithField("container", cfg.ContainerName).Warn("screenshot loop already running, skipping spawn")
		return nil
	}
	runningScreenshotLoops[cfg.ContainerName] = struct{}{}
	runningScreenshotLoopsMu.Unlock()

	interval := cfg.ScreenshotIntervalS
	if interval <= 0 {
		interval = 5
	}

	outDir := "./" + cfg.ContainerName
	remoteImage := "/tmp/neko_screenshot.png"
	tmpOut := outDir + "/screenshot_tmp.png"
	finalOut := outDir + "/screenshot.png"

	script := fmt.Sprintf(
		`while true; do `+
			`docker exec %[1]s scrot %[2]s && `+
			`mkdir -p %[3]s && `+
			`docker cp %[1]s:%[2]s %[4]s && `+
			`mv %[4]s %[5]s; `+
			`sleep %[6]d; `+
			`done`,
		cfg.ContainerName, remoteImage, outDir, tmpOut, finalOut, interval,
	)

	cmd := exec.Command("bash", "-c", script)
	if err := cmd.Start(); err != nil {
		unregisterScreenshotLoop(cfg.ContainerName)
		logrus.WithError(err).WithField("container", cfg.ContainerName).Warn("failed to start screenshot loop")
		return nil
	}

	logrus.WithField("container", cfg.ContainerName).WithField("interval_s", interval).Debug("screenshot loop started")
	return &screenshotProcess{cmd: cmd}
}

// unregisterScreenshotLoop allows another screenshot loop to be started
// for name once the current one has been torn down.
func unregisterScreenshotLoop(name string) {
	runningScreenshotLoopsMu.Lock()
	delete(runningScreenshotLoops, name)
	runningScreenshotLoopsMu.Unlock()
}
