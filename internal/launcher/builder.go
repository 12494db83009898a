package launcher

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultBuildTimeout bounds ExternalCommandBuilder.Build, since an image
// build invoked from an interactive launch must not hang the CLI forever.
const DefaultBuildTimeout = 10 * time.Minute

// ExternalCommandBuilder builds a missing image by shelling out to an
// operator-configured command template, following the same
// exec.CommandContext + captured stdout/stderr shape dockerq.Run uses for
// `docker run`. The command string's one "%s" verb, if present, is
// replaced with the image tag; otherwise the tag is appended as the
// command's last argument.
type ExternalCommandBuilder struct {
	// CommandTemplate is a shell command, e.g. "docker build -t %s .".
	// Empty means building is not configured — Build always fails.
	CommandTemplate string
}

func (b ExternalCommandBuilder) Build(ctx context.Context, imageTag string) error {
	if strings.TrimSpace(b.CommandTemplate) == "" {
		return fmt.Errorf("no build command configured for image %q", imageTag)
	}

	command := b.CommandTemplate
	if strings.Contains(command, "%s") {
		command = fmt.Sprintf(command, imageTag)
	} else {
		command = command + " " + imageTag
	}

	buildCtx, cancel := context.WithTimeout(ctx, DefaultBuildTimeout)
	defer cancel()

	cmd := exec.CommandContext(buildCtx, "sh", "-c", command)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("build command %q failed: %w (stderr: %s)", command, err, errBuf.String())
	}
	return nil
}
