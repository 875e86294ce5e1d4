package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/kbuild/internal/adapters/driven/ai"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the resolved configuration",
	Long: `Show the settings in effect after defaults, the configuration file,
environment and flags are combined, or check that the embedding service
accepts them.`,
	RunE: withRuntime(runConfigShow),
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved settings",
	Args:  cobra.NoArgs,
	RunE:  withRuntime(runConfigShow),
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the embedding service is reachable",
	Args:  cobra.NoArgs,
	RunE:  withRuntime(runConfigCheck),
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configCheckCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string, rt *runtime) error {
	s := rt.settings

	cmd.Printf("Configuration file: %s\n", rt.config.Path())
	cmd.Println()

	cmd.Println("[Chunk]")
	cmd.Printf("  Size: %d\n", s.Chunk.Size)
	cmd.Printf("  Overlap: %d\n", s.Chunk.Overlap)
	cmd.Printf("  Strip Markdown: %t\n", s.Chunk.StripMarkdown)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Model: %s\n", s.Embedding.Model)
	cmd.Printf("  Base URL: %s\n", s.Embedding.BaseURL)
	if s.Embedding.APIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(s.Embedding.APIKey))
	} else {
		cmd.Println("  API Key: (not set)")
	}
	cmd.Printf("  Timeout: %s\n", s.Embedding.Timeout)
	cmd.Printf("  Concurrency: %d\n", s.Embedding.Concurrency)
	if s.Embedding.RequestsPerSecond > 0 {
		cmd.Printf("  Requests/sec: %g\n", s.Embedding.RequestsPerSecond)
	} else {
		cmd.Println("  Requests/sec: unlimited")
	}
	cmd.Println()

	cmd.Println("[Sources]")
	cmd.Printf("  Discourse export: %s\n", s.Sources.DiscourseFile)
	cmd.Printf("  Markdown directory: %s\n", s.Sources.MarkdownDir)
	cmd.Println()

	cmd.Println("[Store]")
	cmd.Printf("  Path: %s\n", s.StorePath)
	cmd.Printf("  Progress interval: %d\n", s.ProgressInterval)
	return nil
}

func runConfigCheck(cmd *cobra.Command, _ []string, rt *runtime) error {
	svc, err := rt.embedder()
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	if err := ai.ValidateEmbeddingService(cmd.Context(), svc); err != nil {
		return err
	}
	cmd.Printf("Embedding service reachable (model %s)\n", svc.ModelName())
	return nil
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
