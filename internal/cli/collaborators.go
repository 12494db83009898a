// Package cli — collaborators.go builds the Allocator/Launcher collaborator
// graph every subcommand needs from NEKO_* environment configuration, so
// each subcommand file stays focused on its own flag parsing and output
// formatting.
package cli

import (
	"github.com/jebin2/neko-launcher/internal/allocator"
	"github.com/jebin2/neko-launcher/internal/dockerq"
	"github.com/jebin2/neko-launcher/internal/launcher"
	"github.com/jebin2/neko-launcher/internal/nekoconfig"
	"github.com/jebin2/neko-launcher/internal/portprobe"
	"github.com/jebin2/neko-launcher/internal/process"
	"github.com/jebin2/neko-launcher/internal/profile"
)

// app bundles the collaborators a subcommand needs, all built from the
// same NEKO_* configuration layer.
type app struct {
	envs      nekoconfig.Envs
	runtime   *dockerq.Client
	allocator *allocator.Allocator
	launcher  *launcher.Launcher
}

// newApp connects to Docker and wires the Allocator/Launcher graph.
// Errors here already carry a CLIError: Validation from
// nekoconfig.LoadEnvs, RuntimeUnavailable from dockerq.NewClient.
func newApp() (*app, error) {
	envs, err := nekoconfig.LoadEnvs()
	if err != nil {
		return nil, err
	}

	rt, err := dockerq.NewClient()
	if err != nil {
		return nil, err
	}

	alloc := allocator.New(envs.PortStateFile, envs.PortLockFile, rt, portprobe.New())

	l := launcher.New(
		alloc,
		rt,
		profile.NewCleaner(),
		launcher.ExternalCommandBuilder{CommandTemplate: envs.BuildCommand},
		process.Global(),
	)

	return &app{envs: envs, runtime: rt, allocator: alloc, launcher: l}, nil
}

func (a *app) close() {
	_ = a.runtime.Close()
}
