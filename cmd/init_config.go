package cmd

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/ethpandaops/layoutcheck/internal/actions"
	"github.com/ethpandaops/layoutcheck/internal/config"
	"github.com/ethpandaops/layoutcheck/internal/interactive"
)

var (
	initConfigForce    bool
	initConfigDefaults bool
)

var initConfigCmd = &cobra.Command{
	Use:   "init-config [path]",
	Short: "Write a check configuration file",
	Long: `Writes a YAML check configuration (selectors, tolerance, timeouts).

In a terminal you are asked for each selector and the tolerance; pass
--defaults to write the defaults without prompting. An existing file is only
replaced with --force or after confirmation.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigFile
		if len(args) == 1 {
			path = args[0]
		}

		opts := actions.InitConfigOptions{Path: path, Force: initConfigForce}
		if !initConfigDefaults && isTerminal() {
			opts.Prompter = interactive.Prompter{}
		}

		return actions.InitConfig(cmd.OutOrStdout(), opts)
	},
}

func init() {
	rootCmd.AddCommand(initConfigCmd)

	initConfigCmd.Flags().BoolVarP(&initConfigForce, "force", "f", false, "Overwrite an existing file without asking")
	initConfigCmd.Flags().BoolVar(&initConfigDefaults, "defaults", false, "Write defaults without prompting")
}

// isTerminal reports whether stdin and stdout are both attached to a terminal.
func isTerminal() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}
