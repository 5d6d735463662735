package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ethpandaops/layoutcheck/internal/actions"
	"github.com/ethpandaops/layoutcheck/internal/config"
	"github.com/ethpandaops/layoutcheck/internal/validation"
)

var (
	// Validate command flags
	validateURL               string
	validateRenderer          string
	validateHost              string
	validatePort              int
	validateSiteDir           string
	validateOutputDir         string
	validateChromePath        string
	validateHeadless          bool
	validateTolerance         float64
	validateTimeout           time.Duration
	validateStartupTimeout    time.Duration
	validateNavigationTimeout time.Duration
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run the summary card layout checks",
	Long: `Start the renderer, load the summary cards page in headless Chrome and run
the layout checks:

- Card Height Consistency: tallest and shortest card differ by less than the tolerance
- Overflow Detection: no card summary overflows its box
- Read-More Links: at least one card links to the full summary
- CSS Class Application: every summary element carries the marker class

Results are written to <output-dir>/validation-results.json together with a
full-page screenshot and one with every card outlined.

Example:
  layoutcheck validate
  layoutcheck validate --renderer static --site-dir public --port 8080
  layoutcheck validate --renderer external --url https://preview.example.com/test-summaries/`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	registerValidateFlags(validateCmd.Flags())
}

func registerValidateFlags(f *pflag.FlagSet) {
	f.StringVar(&validateURL, "url", "", "Page to validate (default: http://<host>:<port>/test-summaries/)")
	f.StringVar(&validateRenderer, "renderer", config.DefaultRenderer, "Renderer mode: hugo, static or external")
	f.StringVar(&validateHost, "host", config.DefaultHost, "Host the renderer binds to")
	f.IntVar(&validatePort, "port", config.DefaultPort, "Port the renderer listens on")
	f.StringVar(&validateSiteDir, "site-dir", config.DefaultSiteDir, "Site source (hugo) or build output (static) directory")
	f.StringVar(&validateOutputDir, "output-dir", config.DefaultOutputDir, "Directory for results and screenshots")
	f.StringVar(&validateChromePath, "chrome-path", "", "Chrome or Chromium executable (default: auto-detect)")
	f.BoolVar(&validateHeadless, "headless", true, "Run the browser headless")
	f.Float64Var(&validateTolerance, "tolerance", 0, "Maximum card height spread in pixels, exclusive (default 10)")
	f.DurationVar(&validateTimeout, "timeout", 5*time.Minute, "Overall run timeout")
	f.DurationVar(&validateStartupTimeout, "startup-timeout", 0, "How long to wait for the renderer (default 30s)")
	f.DurationVar(&validateNavigationTimeout, "navigation-timeout", 0, "How long to wait for the page to load (default 30s)")
}

func runValidate(cmd *cobra.Command, _ []string) error {
	app, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	applyAppFlags(cmd, app)

	checks, err := actions.LoadCheckConfig(app, configPath)
	if err != nil {
		return err
	}

	if err := applyCheckFlags(cmd, checks); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, validateTimeout)
	defer cancel()

	Logger.WithField("url", checks.TargetURL).Debug("starting validation")

	_, err = actions.Validate(ctx, Logger, actions.ValidateOptions{
		App:     app,
		Checks:  checks,
		Verbose: verbose,
		Out:     cmd.OutOrStdout(),
	})

	return err
}

// applyAppFlags overrides environment values with explicitly set flags.
func applyAppFlags(cmd *cobra.Command, app *config.AppConfig) {
	f := cmd.Flags()

	if f.Changed("renderer") {
		app.Renderer = validateRenderer
	}

	if f.Changed("host") {
		app.Host = validateHost
	}

	if f.Changed("port") {
		app.Port = validatePort
	}

	if f.Changed("site-dir") {
		app.SiteDir = validateSiteDir
	}

	if f.Changed("output-dir") {
		app.OutputDir = validateOutputDir
	}

	if f.Changed("chrome-path") {
		app.ChromePath = validateChromePath
	}

	if f.Changed("headless") {
		app.Headless = validateHeadless
	}
}

// applyCheckFlags overrides file and environment values with explicitly set flags.
func applyCheckFlags(cmd *cobra.Command, checks *validation.Config) error {
	f := cmd.Flags()

	if f.Changed("url") {
		checks.TargetURL = validateURL
	}

	if f.Changed("output-dir") {
		checks.OutputDir = validateOutputDir
	}

	if f.Changed("tolerance") {
		checks.HeightTolerance = validateTolerance
	}

	if f.Changed("startup-timeout") {
		checks.StartupTimeout = validateStartupTimeout
	}

	if f.Changed("navigation-timeout") {
		checks.NavigationTimeout = validateNavigationTimeout
	}

	return checks.Validate()
}
