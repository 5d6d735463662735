// Package cmd contains CLI command definitions
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ethpandaops/layoutcheck/internal/actions"
)

// Process exit codes.
const (
	ExitOK           = 0
	ExitChecksFailed = 1
	ExitFailure      = 2
)

var (
	// Logger is the shared logger instance for all commands
	Logger *logrus.Logger

	verbose    bool
	configPath string
	envFile    string

	rootCmd = &cobra.Command{
		Use:   "layoutcheck",
		Short: "Layoutcheck - summary card layout validator",
		Long: `Layoutcheck serves a static site, loads the summary cards page in headless
Chrome and checks that the cards render consistently.

Run without arguments in a terminal to launch interactive mode, or use
subcommands for direct operations.

Exit codes:
  0  all checks passed
  1  the run completed but at least one check failed
  2  the run could not complete (renderer, browser, output directory or configuration)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if verbose {
				Logger.SetLevel(logrus.DebugLevel)
			}
		},
	}
)

// Execute runs the root command and exits with the matching status code.
func Execute() {
	os.Exit(run(context.Background()))
}

func run(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, actions.ErrChecksFailed) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}

	return ExitCode(err)
}

// ExitCode maps a command error onto the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, actions.ErrChecksFailed):
		return ExitChecksFailed
	default:
		return ExitFailure
	}
}

func init() {
	// Load .env file if it exists
	_ = godotenv.Load()

	InitLogger()

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging and detailed tables")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Check configuration YAML (default: $LAYOUTCHECK_CONFIG or ./layoutcheck.yaml if present)")
	// Parsed in main before any command runs; registered so cobra accepts it.
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "Environment file to load (default: .env)")
}
