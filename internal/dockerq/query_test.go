package dockerq

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// isNotFound must recognize the Docker API's "No such container" message so
// Kill/Remove treat an already-gone container as success rather than error.
func TestIsNotFoundMatchesDockerMessage(t *testing.T) {
	err := errors.New(`Error response from daemon: No such container: neko-test-1`)
	assert.True(t, isNotFound(err))
}

// An unrelated error (e.g. the daemon being unreachable) must not be
// misclassified as "already gone".
func TestIsNotFoundRejectsUnrelatedError(t *testing.T) {
	err := errors.New("dial unix /var/run/docker.sock: connect: permission denied")
	assert.False(t, isNotFound(err))
}
