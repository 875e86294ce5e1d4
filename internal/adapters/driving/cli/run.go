package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/kbuild/internal/core/domain"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Initialise, ingest and embed in one step",
	Long: `Create the knowledge base, ingest discussion posts and documents, then
embed every chunk that lacks a vector.

Each invocation ingests the sources again, so chunks accumulate across runs.`,
	Args: cobra.NoArgs,
	RunE: withRuntime(func(cmd *cobra.Command, _ []string, rt *runtime) error {
		if err := runInit(cmd, rt); err != nil {
			return err
		}
		if err := ingestKinds(cmd, rt, domain.SourceKinds(), false); err != nil {
			return err
		}
		return runEmbed(cmd, rt)
	}),
}

func init() {
	rootCmd.AddCommand(runCmd)
}
