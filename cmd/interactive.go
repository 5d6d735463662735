package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ethpandaops/layoutcheck/internal/actions"
	"github.com/ethpandaops/layoutcheck/internal/config"
	"github.com/ethpandaops/layoutcheck/internal/interactive"
)

const interactiveValidateTimeout = 5 * time.Minute

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Launch interactive TUI mode",
	Long:  `Launches the interactive Terminal User Interface for layoutcheck.`,
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return RunInteractive()
	},
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

// RunInteractive shows the main menu until the user exits.
func RunInteractive() error {
	fmt.Println("Layoutcheck - Interactive Mode")
	fmt.Println("==============================")
	fmt.Println()

	for {
		options := []interactive.MenuOption{
			{
				Name:        "🧪 Validate",
				Description: "Run the summary card layout checks",
				Action:      withPause(interactiveValidate),
			},
			{
				Name:        "🩺 Doctor",
				Description: "Check prerequisites",
				Action:      withPause(interactiveDoctor),
			},
			{
				Name:        "📋 Show Config",
				Description: "Display current configuration",
				Action: withPause(func() error {
					return actions.ShowConfig(os.Stdout, configPath)
				}),
			},
			{
				Name:        "📝 Create Check Config",
				Description: "Write a check configuration file",
				Action: withPause(func() error {
					return actions.InitConfig(os.Stdout, actions.InitConfigOptions{
						Path:     config.DefaultConfigFile,
						Prompter: interactive.Prompter{},
					})
				}),
			},
		}

		if err := interactive.ShowMainMenu(options); err != nil {
			if errors.Is(err, interactive.ErrExit) {
				fmt.Println("Goodbye!")
				return nil
			}
			return err
		}

		fmt.Println()
	}
}

// withPause reports an action's error and waits for Enter so output stays visible.
func withPause(action func() error) func() error {
	return func() error {
		if err := action(); err != nil {
			if errors.Is(err, actions.ErrChecksFailed) {
				fmt.Printf("\n⚠️  %v\n", err)
			} else {
				fmt.Printf("\n❌ Error: %v\n", err)
			}
		}

		interactive.PauseForEnter()

		return nil
	}
}

func interactiveValidate() error {
	app, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	checks, err := actions.LoadCheckConfig(app, configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, interactiveValidateTimeout)
	defer cancel()

	_, err = actions.Validate(ctx, Logger, actions.ValidateOptions{
		App:    app,
		Checks: checks,
		Out:    os.Stdout,
	})

	return err
}

func interactiveDoctor() error {
	app, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	checks, err := actions.LoadCheckConfig(app, configPath)
	if err != nil {
		return err
	}

	return actions.Doctor(context.Background(), Logger, app, checks.TargetURL, os.Stdout)
}
