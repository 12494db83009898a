// Package cli — launch.go implements the "neko-launcher launch" command.
//
// launch runs the full launch sequence (ensure image, stop any previous
// instance of this name, clean its profile, allocate ports, start the
// container with bounded conflict-retry, wait for the debug websocket to
// answer) and prints the resulting websocket URL and allocated ports.
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jebin2/neko-launcher/internal/launcher"
	"github.com/jebin2/neko-launcher/internal/model"
	"github.com/jebin2/neko-launcher/internal/nekoconfig"
)

// launchFlags holds the flag values for the launch command. flagOverrides
// hands nekoconfig.FlagOverrides a pointer to a field only when its flag was
// explicitly set, so "not set" (nil) stays distinct from "explicitly set to
// the zero value".
type launchFlags struct {
	url                 string
	profileDir          string
	connectionTimeoutS  int
	chromeFlags         string
	hostNetwork         bool
	imageTag            string
	takeScreenshot      bool
	screenshotIntervalS int
	extraRunArgs        []string
}

// NewLaunchCommand creates the "launch" cobra command.
func NewLaunchCommand() *cobra.Command {
	flags := &launchFlags{}

	cmd := &cobra.Command{
		Use:   "launch <name>",
		Short: "Launch an isolated Neko browser container",
		Long: `Launch starts a new Neko container under the given name, allocating a
unique free (server, debug, webrtc) port triple and waiting for its debug
websocket endpoint to answer before returning.

Examples:
  neko-launcher launch neko-1 --url https://example.com
  neko-launcher launch neko-1 --json --take-screenshot`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runLaunch(cmd.Context(), args[0], flags, cmd)
		},
	}

	cmd.Flags().StringVar(&flags.url, "url", "", "URL the browser navigates to on start")
	cmd.Flags().StringVar(&flags.profileDir, "profile-dir", "", "Chrome profile directory to reuse/clean")
	cmd.Flags().IntVar(&flags.connectionTimeoutS, "connection-timeout", 0, "Seconds to wait for the debug websocket to answer")
	cmd.Flags().StringVar(&flags.chromeFlags, "chrome-flags", "", "Extra flags passed to Chrome inside the container")
	cmd.Flags().BoolVar(&flags.hostNetwork, "host-network", false, "Run the container with --network=host")
	cmd.Flags().StringVar(&flags.imageTag, "image", "", "Container image tag to launch")
	cmd.Flags().BoolVar(&flags.takeScreenshot, "take-screenshot", false, "Start a periodic screenshot loop against the container")
	cmd.Flags().IntVar(&flags.screenshotIntervalS, "screenshot-interval", 0, "Seconds between screenshots")
	cmd.Flags().StringSliceVar(&flags.extraRunArgs, "docker-run-arg", nil, "Extra arguments appended to the docker run invocation (repeatable)")

	return cmd
}

// runLaunch is the main logic function for the launch command.
func runLaunch(ctx context.Context, name string, flags *launchFlags, cmd *cobra.Command) error {
	if err := model.ValidateName(name); err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	VerboseLog("Connected to Docker daemon")

	cfg := a.envs.BuildLaunchConfig(name, flags.url, flagOverrides(cmd, flags))
	VerboseLog("Launching %q with image %q", name, cfg.ImageTag)

	result, err := a.launcher.Launch(ctx, cfg)
	if err != nil {
		return err
	}

	VerboseLog("Container %q ready: server=%d debug=%d webrtc_start=%d",
		name, result.Ports.ServerPort, result.Ports.DebugPort, result.Ports.WebRTCStart)

	printLaunchResult(name, result)
	return nil
}

// flagOverrides builds a nekoconfig.FlagOverrides from launchFlags, only
// surfacing fields the operator actually set on the command line.
func flagOverrides(cmd *cobra.Command, flags *launchFlags) nekoconfig.FlagOverrides {
	overrides := nekoconfig.FlagOverrides{}
	if cmd.Flags().Changed("profile-dir") {
		overrides.ProfileDir = &flags.profileDir
	}
	if cmd.Flags().Changed("connection-timeout") {
		overrides.ConnectionTimeoutS = &flags.connectionTimeoutS
	}
	if cmd.Flags().Changed("chrome-flags") {
		overrides.ChromeFlags = &flags.chromeFlags
	}
	if cmd.Flags().Changed("host-network") {
		overrides.HostNetwork = &flags.hostNetwork
	}
	if cmd.Flags().Changed("image") {
		overrides.ImageTag = &flags.imageTag
	}
	if cmd.Flags().Changed("take-screenshot") {
		overrides.TakeScreenshot = &flags.takeScreenshot
	}
	if cmd.Flags().Changed("screenshot-interval") {
		overrides.ScreenshotIntervalS = &flags.screenshotIntervalS
	}
	if cmd.Flags().Changed("docker-run-arg") {
		overrides.ExtraRunArgs = flags.extraRunArgs
	}
	return overrides
}

// printLaunchResult outputs the launch result in text or JSON format.
func printLaunchResult(name string, result *launcher.LaunchResult) {
	if IsJSONOutput() {
		out := map[string]interface{}{
			"name":              name,
			"websocket_url":     result.WebSocketURL,
			"server_port":       result.Ports.ServerPort,
			"debug_port":        result.Ports.DebugPort,
			"webrtc_port_start": result.Ports.WebRTCStart,
			"webrtc_port_end":   result.Ports.WebRTCEnd(),
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Launched %q\n", name)
	fmt.Printf("  websocket:    %s\n", result.WebSocketURL)
	fmt.Printf("  server port:  %d\n", result.Ports.ServerPort)
	fmt.Printf("  debug port:   %d\n", result.Ports.DebugPort)
	fmt.Printf("  webrtc ports: %d-%d\n", result.Ports.WebRTCStart, result.Ports.WebRTCEnd())
}
