// Package actions contains the operations shared by the CLI commands and the
// interactive menu.
package actions

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/layoutcheck/internal/browser"
	"github.com/ethpandaops/layoutcheck/internal/config"
	"github.com/ethpandaops/layoutcheck/internal/renderer"
	"github.com/ethpandaops/layoutcheck/internal/validation"
	"github.com/ethpandaops/layoutcheck/internal/validation/metrics"
	"github.com/ethpandaops/layoutcheck/internal/validation/output"
	"github.com/ethpandaops/layoutcheck/internal/validation/report"
	"github.com/ethpandaops/layoutcheck/internal/validation/table"
)

// ErrChecksFailed is returned when the run completed but at least one check failed.
var ErrChecksFailed = errors.New("layout checks failed")

// ValidateOptions holds everything a validation run needs.
type ValidateOptions struct {
	App     *config.AppConfig
	Checks  *validation.Config
	Verbose bool
	Out     io.Writer
}

// Validate wires the renderer, browser, reporter and console output together
// and runs one validation. It returns ErrChecksFailed alongside the report
// when any check failed.
func Validate(ctx context.Context, log logrus.FieldLogger, opts ValidateOptions) (*report.Report, error) {
	mode, err := renderer.ParseMode(opts.App.Renderer)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", validation.ErrInvalidConfig, err)
	}

	rend, err := renderer.New(log, renderer.Options{
		Mode:           mode,
		Binary:         opts.App.HugoBinary,
		Host:           opts.App.Host,
		Port:           opts.App.Port,
		Dir:            opts.App.SiteDir,
		ProbeURL:       opts.Checks.TargetURL,
		StartupTimeout: opts.Checks.StartupTimeout,
		ProbeInterval:  opts.Checks.ProbeInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", validation.ErrInvalidConfig, err)
	}

	driver := browser.NewChrome(log, browser.Options{
		ExecPath:          opts.App.ChromePath,
		Headless:          opts.App.Headless,
		ViewportWidth:     opts.Checks.ViewportWidth,
		ViewportHeight:    opts.Checks.ViewportHeight,
		NavigationTimeout: opts.Checks.NavigationTimeout,
	})

	collector := metrics.NewCollector(log)
	tables := table.NewRenderer(log)
	formatter := output.NewFormatter(
		opts.Out,
		opts.Verbose,
		collector,
		table.NewPhaseFormatter(log, tables),
		table.NewResultsFormatter(log, tables),
		table.NewSummaryFormatter(log, tables),
	)

	v := validation.NewValidator(
		log,
		opts.Checks,
		rend,
		driver,
		report.NewReporter(log, opts.Checks.OutputDir, opts.Out),
		collector,
		formatter,
	)

	rep, err := v.Validate(ctx)

	formatter.PrintPhaseTimings()

	if err != nil {
		return nil, err
	}

	if opts.Verbose {
		formatter.PrintCheckResults()
	}

	formatter.PrintSummary()

	if !rep.Summary.AllTestsPassed {
		return rep, fmt.Errorf("%w: %d of %d", ErrChecksFailed, rep.Summary.FailedTests, rep.Summary.TotalTests)
	}

	return rep, nil
}
