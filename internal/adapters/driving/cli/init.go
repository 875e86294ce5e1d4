package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kbuild/internal/adapters/driven/config/file"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the knowledge base and a default configuration file",
	Long: `Create both chunk tables in the knowledge base if they do not exist yet,
and write every missing default setting to the configuration file.

Existing rows and configured values are left untouched.`,
	Args: cobra.NoArgs,
	RunE: withRuntime(func(cmd *cobra.Command, _ []string, rt *runtime) error {
		return runInit(cmd, rt)
	}),
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, rt *runtime) error {
	if err := rt.store.Initialize(cmd.Context()); err != nil {
		return err
	}
	cmd.Printf("Knowledge base ready: %s\n", rt.settings.StorePath)

	if err := file.WriteDefaults(rt.config); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}
	cmd.Printf("Configuration: %s\n", rt.config.Path())
	return nil
}
