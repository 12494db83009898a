// Package cli — reap.go implements the "neko-launcher reap" command.
//
// reap forces a dead-allocation sweep without performing a launch —
// useful for an operator cron job that reclaims ports left behind by
// containers killed outside the launcher (e.g. `docker kill` by hand, or
// an OOM kill) without waiting for the next Launch call to do it inline.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// NewReapCommand creates the "reap" cobra command.
func NewReapCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reap",
		Short: "Force a dead-allocation sweep without launching anything",
		Long: `Reap drops any recorded allocation whose container the runtime no
longer reports as running, releasing its ports for reuse. If the
container runtime cannot be reached, reap is a no-op rather than
reclaiming ports it cannot confirm are free.

Examples:
  neko-launcher reap
  neko-launcher reap --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runReap(cmd.Context())
		},
	}

	return cmd
}

// runReap is the main logic function for the reap command.
func runReap(ctx context.Context) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	VerboseLog("Connected to Docker daemon")

	reaped, err := a.allocator.Reap(ctx)
	if err != nil {
		return err
	}
	sort.Strings(reaped)

	VerboseLog("Reaped %d dead allocation(s)", len(reaped))
	printReapResult(reaped)
	return nil
}

// printReapResult outputs the reap result in text or JSON format.
func printReapResult(reaped []string) {
	if IsJSONOutput() {
		if reaped == nil {
			reaped = []string{}
		}
		result := map[string]interface{}{
			"reaped": reaped,
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return
	}

	if len(reaped) == 0 {
		fmt.Println("No dead allocations found.")
		return
	}
	fmt.Printf("Reaped %d dead allocation(s):\n", len(reaped))
	for _, name := range reaped {
		fmt.Printf("  %s\n", name)
	}
}
