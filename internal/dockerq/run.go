package dockerq

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/jebin2/neko-launcher/internal/model"
)

// DefaultRunTimeout bounds the "docker run" invocation itself — the call
// that launches the detached container, not the container's own lifetime.
const DefaultRunTimeout = 30 * time.Second

// RunArgs builds the argument list for "docker run" from a launch
// configuration and its allocated ports: detached, auto-removing, the
// three port mappings, the managed-by label, the profile volume mount,
// and the WebRTC/Chrome environment variables.
func RunArgs(cfg model.LaunchConfig) []string {
	webrtcEnd := cfg.WebRTCStart + model.WebRTCRangeSize - 1

	args := []string{
		"run", "--detach",
		"--name", cfg.ContainerName,
		"--rm",
		"--label", LabelManagedBy + "=" + LabelManagedByValue,
		"--cap-add=SYS_ADMIN",
	}
	if cfg.HostNetwork {
		// Host networking means the container binds cfg's ports directly on
		// the host, so there is nothing for "-p" to map. The triple is still
		// allocated and held in state (Allocator.Allocate runs regardless of
		// HostNetwork) so no other launch can pick the same ports.
		args = append(args, "--network=host")
	} else {
		args = append(args,
			"-p", fmt.Sprintf("%d:8080", cfg.ServerPort),
			"-p", fmt.Sprintf("%d:9223", cfg.DebugPort),
			"-p", fmt.Sprintf("%d-%d:%d-%d/udp", cfg.WebRTCStart, webrtcEnd, cfg.WebRTCStart, webrtcEnd),
		)
	}
	if cfg.ProfileDir != "" {
		args = append(args, "-v", cfg.ProfileDir+":/home/neko/chrome-profile")
	}
	args = append(args,
		"-e", "NEKO_WEBRTC_EPR="+strconv.Itoa(int(cfg.WebRTCStart))+"-"+strconv.Itoa(int(webrtcEnd)),
		"-e", "NEKO_WEBRTC_NAT1TO1=127.0.0.1",
		"-e", "NEKO_CHROME_FLAGS="+cfg.ChromeFlags,
		"-e", "NEKO_DISABLE_AUDIO=1",
	)
	args = append(args, cfg.ExtraRunArgs...)
	args = append(args, cfg.ImageTag)

	return args
}

// Run is the method form, letting *Client satisfy the launcher package's
// runtime interface even though the underlying call shells out to the
// docker CLI rather than using c's SDK connection.
func (c *Client) Run(ctx context.Context, cfg model.LaunchConfig) (string, string, error) {
	return Run(ctx, cfg)
}

// Run starts a detached container per cfg's already-allocated ports,
// using "docker run" as a subprocess rather than the SDK's
// ContainerCreate+ContainerStart pair — the CLI accepts the flags directly,
// so there is no struct-building indirection to get right.
func Run(ctx context.Context, cfg model.LaunchConfig) (stdout string, stderr string, err error) {
	runCtx, cancel := context.WithTimeout(ctx, DefaultRunTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "docker", RunArgs(cfg)...)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	runErr := cmd.Run()
	return outBuf.String(), errBuf.String(), runErr
}
