package dockerq

import (
	"context"
	"fmt"
	"net"
	"os"
	"runtime"
	"time"

	"github.com/docker/docker/client"

	"github.com/jebin2/neko-launcher/internal/model"
)

// DefaultTimeout bounds every DockerQuery operation so an unreachable daemon
// never hangs a caller indefinitely.
const DefaultTimeout = 5 * time.Second

// Client wraps the Docker Engine SDK client with automatic socket detection
// across platforms. Every neko-launcher DockerQuery operation goes through
// one of these.
type Client struct {
	inner *client.Client
}

// NewClient creates a Client with automatic socket detection: DOCKER_HOST
// if set, otherwise the platform's default socket path.
func NewClient() (*Client, error) {
	if dockerHost := os.Getenv("DOCKER_HOST"); dockerHost != "" {
		return newClientWithHost(dockerHost)
	}

	host, err := detectDockerHost()
	if err != nil {
		return nil, model.WrapRuntimeUnavailable("", "docker socket not found", err)
	}
	return newClientWithHost(host)
}

func newClientWithHost(host string) (*Client, error) {
	c, err := client.NewClientWithOpts(
		client.WithHost(host),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, model.WrapRuntimeUnavailable("", fmt.Sprintf("failed to create docker client for host %q", host), err)
	}
	return &Client{inner: c}, nil
}

// detectDockerHost determines the Docker socket path for the current
// platform, preferring the standard unix socket location.
func detectDockerHost() (string, error) {
	switch runtime.GOOS {
	case "linux":
		return detectUnixSocket([]string{"/var/run/docker.sock"})

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return detectUnixSocket([]string{"/var/run/docker.sock"})
		}
		return detectUnixSocket([]string{
			"/var/run/docker.sock",
			homeDir + "/.docker/run/docker.sock",
		})

	case "windows":
		pipePath := `//./pipe/docker_engine`
		conn, err := net.DialTimeout("pipe", pipePath, time.Second)
		if err == nil {
			_ = conn.Close()
			return "npipe://" + pipePath, nil
		}
		return "", fmt.Errorf("docker named pipe not found at %s: %w", pipePath, err)

	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

func detectUnixSocket(paths []string) (string, error) {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return "unix://" + path, nil
		}
	}
	return "", fmt.Errorf("docker socket not found at any of: %v — is docker running?", paths)
}

// Ping verifies the Docker daemon is reachable within DefaultTimeout.
func (c *Client) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	if _, err := c.inner.Ping(pingCtx); err != nil {
		return model.WrapRuntimeUnavailable("", "docker daemon is not responding — is docker running?", err)
	}
	return nil
}

// Close releases the underlying SDK client's resources. Safe to call more
// than once.
func (c *Client) Close() error {
	if c.inner != nil {
		return c.inner.Close()
	}
	return nil
}

// Inner returns the underlying Docker SDK client for operations not
// exposed through Client's own methods.
func (c *Client) Inner() *client.Client {
	return c.inner
}
