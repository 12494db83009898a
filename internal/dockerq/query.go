package dockerq

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"

	"github.com/jebin2/neko-launcher/internal/model"
)

// RunningNames lists the names of every running container this launcher
// manages. The second return value is false when the runtime could not be
// reached at all — callers (Allocator's dead-allocation reaper) MUST treat
// that as UNKNOWN and skip reaping rather than conclude every allocation is
// dead: a momentarily unreachable daemon should never look like every
// container died.
func RunningNames(ctx context.Context, c *Client) (map[string]struct{}, bool) {
	queryCtx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	filterArgs := filters.NewArgs(
		filters.Arg("label", LabelManagedBy+"="+LabelManagedByValue),
		filters.Arg("status", "running"),
	)

	containers, err := c.Inner().ContainerList(queryCtx, container.ListOptions{Filters: filterArgs})
	if err != nil {
		return nil, false
	}

	names := make(map[string]struct{}, len(containers))
	for _, ct := range containers {
		for _, n := range ct.Names {
			names[strings.TrimPrefix(n, "/")] = struct{}{}
		}
	}
	return names, true
}

// RunningNames is the method form of the package-level function, letting
// *Client satisfy the allocator package's runtime-query interface so tests
// can substitute a fake without a live Docker daemon.
func (c *Client) RunningNames(ctx context.Context) (map[string]struct{}, bool) {
	return RunningNames(ctx, c)
}

// ImageExists is the method form, letting *Client satisfy the launcher
// package's runtime interface.
func (c *Client) ImageExists(ctx context.Context, tag string) (bool, error) {
	return ImageExists(ctx, c, tag)
}

// Kill is the method form, letting *Client satisfy the launcher package's
// runtime interface.
func (c *Client) Kill(ctx context.Context, name string) error {
	return Kill(ctx, c, name)
}

// Remove is the method form, letting *Client satisfy the launcher package's
// runtime interface.
func (c *Client) Remove(ctx context.Context, name string) error {
	return Remove(ctx, c, name)
}

// Exec is the method form, letting *Client satisfy the launcher package's
// runtime interface.
func (c *Client) Exec(ctx context.Context, name string, argv []string, timeout time.Duration) (string, error) {
	return Exec(ctx, c, name, argv, timeout)
}

// ImageExists reports whether an image with the given tag is present in the
// local image store.
func ImageExists(ctx context.Context, c *Client, tag string) (bool, error) {
	queryCtx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	filterArgs := filters.NewArgs(filters.Arg("reference", tag))
	images, err := c.Inner().ImageList(queryCtx, image.ListOptions{Filters: filterArgs})
	if err != nil {
		return false, model.WrapRuntimeUnavailable("", fmt.Sprintf("failed to query image %q", tag), err)
	}
	return len(images) > 0, nil
}

// Kill sends the runtime's equivalent of SIGKILL to the named container.
// It is best-effort: a "no such container" response counts as success,
// since the caller only wants the container gone.
func Kill(ctx context.Context, c *Client, name string) error {
	killCtx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	err := c.Inner().ContainerKill(killCtx, name, "KILL")
	if err != nil && !isNotFound(err) {
		return model.WrapRuntimeUnavailable(name, "failed to kill container", err)
	}
	return nil
}

// Remove deletes the named container, forcing removal of a still-running
// one. Best-effort: a "no such container" response counts as success.
func Remove(ctx context.Context, c *Client, name string) error {
	removeCtx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	err := c.Inner().ContainerRemove(removeCtx, name, container.RemoveOptions{Force: true})
	if err != nil && !isNotFound(err) {
		return model.WrapRuntimeUnavailable(name, "failed to remove container", err)
	}
	return nil
}

// Exec runs argv inside the named container and returns its combined
// stdout/stderr, bounded by timeout.
func Exec(ctx context.Context, c *Client, name string, argv []string, timeout time.Duration) (string, error) {
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	created, err := c.Inner().ContainerExecCreate(execCtx, name, container.ExecOptions{
		Cmd:          argv,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return "", model.WrapRuntimeUnavailable(name, fmt.Sprintf("failed to create exec for %v", argv), err)
	}

	attached, err := c.Inner().ContainerExecAttach(execCtx, created.ID, container.ExecAttachOptions{})
	if err != nil {
		return "", model.WrapRuntimeUnavailable(name, fmt.Sprintf("failed to attach exec for %v", argv), err)
	}
	defer attached.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, attached.Reader); err != nil {
		return "", model.WrapRuntimeUnavailable(name, fmt.Sprintf("failed to read exec output for %v", argv), err)
	}

	inspect, err := c.Inner().ContainerExecInspect(execCtx, created.ID)
	if err != nil {
		return buf.String(), model.WrapRuntimeUnavailable(name, fmt.Sprintf("failed to inspect exec result for %v", argv), err)
	}
	if inspect.ExitCode != 0 {
		return buf.String(), model.WrapRuntimeUnavailable(name, fmt.Sprintf("exec %v exited with code %d", argv, inspect.ExitCode), nil)
	}

	return buf.String(), nil
}

// isNotFound reports whether err indicates the container is already gone —
// the Docker API surfaces this as a 404, which the SDK wraps in an
// unexported error type, so we match on the message it's documented to
// contain rather than a type assertion.
func isNotFound(err error) bool {
	return strings.Contains(err.Error(), "No such container")
}
