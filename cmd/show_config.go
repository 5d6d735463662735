package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ethpandaops/layoutcheck/internal/actions"
)

var showConfigCmd = &cobra.Command{
	Use:   "show-config",
	Short: "Display current configuration",
	Long:  `Shows the environment configuration loaded from environment variables and .env file, followed by the effective check configuration.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := actions.ShowConfig(cmd.OutOrStdout(), configPath); err != nil {
			return fmt.Errorf("failed to show config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showConfigCmd)
}
