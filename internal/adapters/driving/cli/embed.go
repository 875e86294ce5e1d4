package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Attach embeddings to every chunk that lacks one",
	Long: `Request an embedding for each chunk with no vector, discussion posts first,
then documents. Each vector is committed as soon as it arrives.

The first failure stops the run. Rows embedded before it are kept, and the
next run resumes with the remaining rows.`,
	Args: cobra.NoArgs,
	RunE: withRuntime(func(cmd *cobra.Command, _ []string, rt *runtime) error {
		return runEmbed(cmd, rt)
	}),
}

func init() {
	rootCmd.AddCommand(embedCmd)
}

func runEmbed(cmd *cobra.Command, rt *runtime) error {
	printer := newProgressPrinter(cmd.OutOrStdout())
	backfiller, release, err := rt.backfiller(printer.Report)
	if err != nil {
		return err
	}
	defer release()

	report, err := backfiller.Run(cmd.Context())
	printer.Finish()
	if err != nil {
		embedded := 0
		if report != nil {
			embedded = report.Embedded()
		}
		return fmt.Errorf("embedding stopped after %d rows: %w", embedded, err)
	}

	for _, k := range report.Kinds {
		cmd.Printf("%s: %d embedded\n", k.Kind.Description(), k.Embedded)
	}
	cmd.Printf("Run %s complete: %d rows embedded\n", report.RunID, report.Embedded())
	return nil
}
