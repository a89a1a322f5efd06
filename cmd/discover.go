package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// newDiscoverCmd creates the 'discover' subcommand, which runs one pass and prints the
// result. A degraded pass still prints a result and exits zero.
func newDiscoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discover <client_id>",
		Short: "Discover display metadata for one client identifier",
		Args:  cobra.ExactArgs(1),
		RunE:  runDiscoverCommand,
	}
}

func runDiscoverCommand(cmd *cobra.Command, args []string) error {
	rt, err := resolveRuntime(cmd.Context())
	if err != nil {
		return err
	}
	clientID := args[0]

	start := time.Now()
	out := rt.app.Discoverer().Discover(cmd.Context(), clientID)
	rt.app.Recorder().Record(cmd.Context(), clientID, out, time.Since(start))

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(out.Result); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}
