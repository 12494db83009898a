// Package cli — list.go implements the "neko-launcher list" command.
//
// list prints the current StateStore allocation table, annotated with
// whether the runtime still lists each name as running. Unlike `reap`, it
// never mutates state — it is a pure read against Allocator.Snapshot.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jebin2/neko-launcher/internal/model"
)

// NewListCommand creates the "list" cobra command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List current port allocations and their running status",
		Long: `List prints every allocation currently recorded in the port state file,
along with whether the container runtime still reports it as running.

Examples:
  neko-launcher list
  neko-launcher list --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context())
		},
	}

	return cmd
}

// runList is the main logic function for the list command.
func runList(ctx context.Context) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	VerboseLog("Connected to Docker daemon")

	snapshot := a.allocator.Snapshot(ctx)
	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].ContainerName < snapshot[j].ContainerName
	})

	VerboseLog("Found %d allocation(s)", len(snapshot))
	printListResult(snapshot)
	return nil
}

// listEntryJSON is the JSON output structure for a single allocation.
type listEntryJSON struct {
	Name            string `json:"name"`
	Running         bool   `json:"running"`
	ServerPort      uint16 `json:"server_port"`
	DebugPort       uint16 `json:"debug_port"`
	WebRTCPortStart uint16 `json:"webrtc_port_start"`
	WebRTCPortEnd   uint16 `json:"webrtc_port_end"`
}

// printListResult outputs the allocation list in text or JSON format.
func printListResult(snapshot []model.AllocationSnapshot) {
	if IsJSONOutput() {
		printListResultJSON(snapshot)
	} else {
		printListResultText(snapshot)
	}
}

// buildListEntries converts a snapshot into its JSON-output shape. Split
// out from printListResultJSON so the field mapping is testable without
// capturing stdout.
func buildListEntries(snapshot []model.AllocationSnapshot) []listEntryJSON {
	entries := make([]listEntryJSON, 0, len(snapshot))
	for _, s := range snapshot {
		entries = append(entries, listEntryJSON{
			Name:            s.ContainerName,
			Running:         s.Running,
			ServerPort:      s.Allocation.ServerPort,
			DebugPort:       s.Allocation.DebugPort,
			WebRTCPortStart: s.Allocation.WebRTCStart,
			WebRTCPortEnd:   s.Allocation.WebRTCEnd(),
		})
	}
	return entries
}

func printListResultJSON(snapshot []model.AllocationSnapshot) {
	type resultJSON struct {
		Allocations []listEntryJSON `json:"allocations"`
	}

	result := resultJSON{Allocations: buildListEntries(snapshot)}
	data, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(data))
}

// printListResultText outputs the allocation list as a human-readable
// text table with aligned columns.
//
//	NAME                 RUNNING  SERVER  DEBUG  WEBRTC
//	neko-1               yes      8081    9224   52000-52100
//	neko-2               no       8082    9225   52101-52201
func printListResultText(snapshot []model.AllocationSnapshot) {
	if len(snapshot) == 0 {
		fmt.Println("No allocations found.")
		return
	}

	fmt.Printf("%-20s %-8s %-7s %-6s %s\n", "NAME", "RUNNING", "SERVER", "DEBUG", "WEBRTC")
	for _, s := range snapshot {
		running := "no"
		if s.Running {
			running = "yes"
		}
		fmt.Printf("%-20s %-8s %-7d %-6d %d-%d\n",
			s.ContainerName, running, s.Allocation.ServerPort, s.Allocation.DebugPort,
			s.Allocation.WebRTCStart, s.Allocation.WebRTCEnd())
	}
}
