// Package cli provides the kbuild command line interface.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kbuild/internal/adapters/driven/config/file"
	"github.com/custodia-labs/kbuild/internal/logger"
)

var (
	version = "dev"

	configPath string
	storePath  string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "kbuild",
	Short: "Build a semantic knowledge base from forum posts and documentation",
	Long: `kbuild ingests a Discourse post export and a directory of archived
Markdown pages into a SQLite knowledge base of overlapping text chunks,
then attaches an embedding vector to every chunk that lacks one.

Run 'kbuild run' to initialise, ingest and embed in one step.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.SetOut(os.Stdout)
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", file.DefaultFileName,
		"configuration file")
	rootCmd.PersistentFlags().StringVar(&storePath, "db", "",
		"knowledge base file (overrides store.path)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
