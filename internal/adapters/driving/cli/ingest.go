package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/kbuild/internal/core/domain"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Split posts and documents into chunks",
	Long: `Read the Discourse export and the Markdown directory, split each post
and page into overlapping windows and append them to the knowledge base
without embeddings.

Ingestion does not deduplicate: running it twice stores every chunk twice.
Use --dry-run to see what would be written.`,
	Args: cobra.NoArgs,
	RunE: withRuntime(runIngest),
}

var (
	ingestPosts  bool
	ingestDocs   bool
	ingestDryRun bool
)

func init() {
	ingestCmd.Flags().BoolVar(&ingestPosts, "posts", false, "ingest discussion posts only")
	ingestCmd.Flags().BoolVar(&ingestDocs, "docs", false, "ingest documents only")
	ingestCmd.Flags().BoolVar(&ingestDryRun, "dry-run", false, "chunk without writing to the knowledge base")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string, rt *runtime) error {
	kinds := domain.SourceKinds()
	switch {
	case ingestPosts && !ingestDocs:
		kinds = []domain.SourceKind{domain.SourceKindPost}
	case ingestDocs && !ingestPosts:
		kinds = []domain.SourceKind{domain.SourceKindDocument}
	}
	return ingestKinds(cmd, rt, kinds, ingestDryRun)
}

// ingestKinds runs ingestion for each kind in order, stopping at the first error.
func ingestKinds(cmd *cobra.Command, rt *runtime, kinds []domain.SourceKind, dryRun bool) error {
	ingestor, err := rt.ingestor(dryRun)
	if err != nil {
		return err
	}

	if dryRun {
		cmd.Println("Dry run: nothing will be written.")
	}

	for _, kind := range kinds {
		report, err := ingestor.Ingest(cmd.Context(), kind)
		if err != nil {
			return err
		}
		cmd.Printf("%s: %d ingested, %d chunks", kind.Description(), report.Parents, report.Chunks)
		if report.Failed > 0 {
			cmd.Printf(", %d skipped", report.Failed)
		}
		cmd.Println()
	}
	return nil
}
