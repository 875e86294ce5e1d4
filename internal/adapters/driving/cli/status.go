package cli

import (
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show chunk counts and the last embedding run",
	Args:  cobra.NoArgs,
	RunE:  withRuntime(runStatus),
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string, rt *runtime) error {
	status, err := rt.status(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Printf("Knowledge base: %s\n", rt.settings.StorePath)
	for _, k := range status.Kinds {
		cmd.Printf("  %s: %d chunks, %d embedded, %d pending\n",
			k.Kind.Description(), k.Total, k.Embedded, k.Pending())
	}
	cmd.Println()

	run := status.LastRun
	if run == nil {
		cmd.Println("Last run: none")
		return nil
	}

	cmd.Printf("Last run: %s\n", run.RunID)
	cmd.Printf("  Started: %s\n", run.StartedAt.Format(time.RFC3339))
	if !run.FinishedAt.IsZero() {
		cmd.Printf("  Finished: %s\n", run.FinishedAt.Format(time.RFC3339))
	}
	cmd.Printf("  Embedded: %d\n", run.Embedded())
	switch {
	case run.FinishedAt.IsZero():
		cmd.Println("  Result: interrupted")
	case run.Succeeded():
		cmd.Println("  Result: ok")
	default:
		cmd.Printf("  Result: failed on %s: %s\n", run.FailedKind, run.Error)
	}
	return nil
}
