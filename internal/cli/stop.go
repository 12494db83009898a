// Package cli — stop.go implements the "neko-launcher stop" command.
//
// stop runs the same teardown Launcher.Cleanup performs after a launch:
// gracefully close the in-container browser, kill and remove the
// container, and release its ports. It takes no process.Handle (this is a
// separate CLI invocation from whatever process launched the container),
// so the screenshot-loop/subprocess-wait steps are simply skipped.
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jebin2/neko-launcher/internal/model"
)

// NewStopCommand creates the "stop" cobra command.
func NewStopCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop <name>",
		Short: "Stop and remove a launched container, releasing its ports",
		Long: `Stop gracefully closes the in-container browser, kills and removes the
named container, and releases its allocated ports.

Stopping an already-stopped or never-launched name is a no-op, not an
error — it simply finds nothing to kill and releases no ports.

Examples:
  neko-launcher stop neko-1
  neko-launcher stop --json neko-1`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runStop(cmd.Context(), args[0])
		},
	}

	return cmd
}

// runStop is the main logic function for the stop command.
func runStop(ctx context.Context, name string) error {
	if err := model.ValidateName(name); err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	VerboseLog("Connected to Docker daemon")

	if err := a.launcher.Cleanup(ctx, model.LaunchConfig{ContainerName: name}, nil); err != nil {
		return err
	}

	printStopResult(name)
	return nil
}

// printStopResult outputs the stop result in text or JSON format.
func printStopResult(name string) {
	if IsJSONOutput() {
		result := map[string]interface{}{
			"name":   name,
			"action": "stopped",
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Stopped %q\n", name)
}
