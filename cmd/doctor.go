package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ethpandaops/layoutcheck/internal/actions"
	"github.com/ethpandaops/layoutcheck/internal/config"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that validation prerequisites are installed and reachable",
	Long: `Checks, in parallel, everything a validation run needs: the renderer binary,
a Chrome or Chromium executable, a free port for the renderer and a writable
output directory. In external mode the target page is probed instead of the port.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		checks, err := actions.LoadCheckConfig(app, configPath)
		if err != nil {
			return err
		}

		return actions.Doctor(cmd.Context(), Logger, app, checks.TargetURL, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
