// Package validation runs the layout check battery against a rendered page.
package validation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/layoutcheck/internal/browser"
	"github.com/ethpandaops/layoutcheck/internal/renderer"
	"github.com/ethpandaops/layoutcheck/internal/validation/check"
	"github.com/ethpandaops/layoutcheck/internal/validation/metrics"
	"github.com/ethpandaops/layoutcheck/internal/validation/output"
	"github.com/ethpandaops/layoutcheck/internal/validation/report"
)

// Screenshot artifacts written into the output directory.
const (
	FullScreenshotFile      = "summary-cards-full.png"
	AnnotatedScreenshotFile = "summary-cards-with-borders.png"

	StageFullPage  = "full page"
	StageAnnotated = "annotated with debug borders"
)

// Driver is the browser session the validator loads the page into.
type Driver interface {
	Open(ctx context.Context) error
	Navigate(ctx context.Context, url string) error
	Measure(ctx context.Context, sel browser.Selectors) (*check.Measurements, error)
	Screenshot(ctx context.Context) ([]byte, error)
	Annotate(ctx context.Context, cardSelector string) (int, error)
	Close() error
}

// Validator owns one run: it acquires the renderer and the browser, runs every
// check against a single page load and hands the report to the reporter.
type Validator struct {
	log      logrus.FieldLogger
	cfg      *Config
	renderer renderer.Renderer
	driver   Driver
	reporter report.Reporter
	metrics  metrics.Collector
	output   output.Formatter
	now      func() time.Time
}

// NewValidator creates a validator. The renderer and driver are started and
// released by Validate.
func NewValidator(
	log logrus.FieldLogger,
	cfg *Config,
	rend renderer.Renderer,
	driver Driver,
	reporter report.Reporter,
	metricsCollector metrics.Collector,
	formatter output.Formatter,
) *Validator {
	return &Validator{
		log:      log.WithField("component", "validator"),
		cfg:      cfg,
		renderer: rend,
		driver:   driver,
		reporter: reporter,
		metrics:  metricsCollector,
		output:   formatter,
		now:      time.Now,
	}
}

// Validate runs the check battery and returns the persisted report. Failed
// checks are not errors; any infrastructure failure is returned wrapping
// ErrValidationFailed and leaves no results file behind.
func (v *Validator) Validate(ctx context.Context) (*report.Report, error) {
	if err := v.metrics.Start(ctx); err != nil {
		return nil, v.fail(fmt.Errorf("starting metrics: %w", err))
	}

	defer func() {
		if err := v.metrics.Stop(); err != nil {
			v.log.WithError(err).Warn("failed to stop metrics collector")
		}
	}()

	if err := report.ProbeWritable(v.cfg.OutputDir); err != nil {
		return nil, v.fail(err)
	}

	// A stale file from an earlier run must not be mistaken for this run's result.
	stale := filepath.Join(v.cfg.OutputDir, report.ResultsFile)
	if err := os.Remove(stale); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, v.fail(fmt.Errorf("%w: removing previous results: %w", ErrPersistence, err))
	}

	rep, err := v.run(ctx)
	if err != nil {
		return nil, v.fail(err)
	}

	path, err := v.reporter.Persist(rep)
	if err != nil {
		return nil, v.fail(err)
	}

	v.log.WithField("path", path).Info("results saved")
	v.reporter.PrintSummary(rep)

	return rep, nil
}

// run holds the renderer and the browser for exactly its own duration.
func (v *Validator) run(ctx context.Context) (*report.Report, error) {
	defer v.release()

	builder := report.NewBuilder(v.now(), v.cfg.TargetURL)

	v.output.PrintPhase("Preparing page")

	if err := v.phase(metrics.PhaseRendererStart, func() error {
		return v.renderer.Start(ctx)
	}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRendererUnavailable, err)
	}

	if err := v.phase(metrics.PhaseBrowserLaunch, func() error {
		return v.driver.Open(ctx)
	}); err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	if err := v.phase(metrics.PhaseNavigation, func() error {
		return v.driver.Navigate(ctx, v.cfg.TargetURL)
	}); err != nil {
		return nil, fmt.Errorf("%w: loading %s: %w", ErrRendererUnavailable, v.cfg.TargetURL, err)
	}

	var measurements *check.Measurements

	if err := v.phase(metrics.PhaseMeasurement, func() error {
		m, err := v.driver.Measure(ctx, v.cfg.Selectors())
		measurements = m

		return err
	}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMeasurement, err)
	}

	if measurements == nil {
		return nil, fmt.Errorf("%w: browser returned no measurements", ErrMeasurement)
	}

	v.output.PrintPhase("Running checks")

	if err := v.phase(metrics.PhaseChecks, func() error {
		return v.runChecks(builder, measurements)
	}); err != nil {
		return nil, err
	}

	v.output.PrintPhase("Capturing screenshots")

	if err := v.phase(metrics.PhaseScreenshots, func() error {
		return v.captureScreenshots(ctx, builder)
	}); err != nil {
		return nil, err
	}

	return builder.Build(), nil
}

func (v *Validator) runChecks(builder *report.Builder, m *check.Measurements) error {
	for _, fn := range check.Battery(v.cfg.HeightTolerance) {
		start := time.Now()
		result := fn(m)
		result.Duration = time.Since(start)

		if err := builder.Add(result); err != nil {
			return fmt.Errorf("recording %q: %w", result.Name, err)
		}

		v.metrics.RecordCheckResult(&metrics.CheckResultMetric{
			Name:      result.Name,
			Passed:    result.Passed,
			Duration:  result.Duration,
			Details:   result.Details,
			Timestamp: start,
		})

		v.log.WithFields(logrus.Fields{
			"check":  result.Name,
			"passed": result.Passed,
		}).Debug("check evaluated")

		// Outcomes are printed from the finished report only.
		v.output.PrintProgress("  evaluated "+result.Name, result.Duration)
	}

	return nil
}

func (v *Validator) captureScreenshots(ctx context.Context, builder *report.Builder) error {
	if err := v.capture(ctx, builder, StageFullPage, FullScreenshotFile); err != nil {
		return err
	}

	count, err := v.driver.Annotate(ctx, v.cfg.CardSelector)
	if err != nil {
		return fmt.Errorf("annotating cards: %w", err)
	}

	v.log.WithField("cards", count).Debug("outlined cards")

	return v.capture(ctx, builder, StageAnnotated, AnnotatedScreenshotFile)
}

func (v *Validator) capture(ctx context.Context, builder *report.Builder, stage, file string) error {
	start := time.Now()

	data, err := v.driver.Screenshot(ctx)
	if err != nil {
		return fmt.Errorf("capturing %s screenshot: %w", stage, err)
	}

	path := filepath.Join(v.cfg.OutputDir, file)
	if err := report.WriteFileAtomic(path, data); err != nil {
		return err
	}

	shot := report.Screenshot{Stage: stage, Path: path, SizeBytes: int64(len(data))}
	if err := builder.AddScreenshot(shot); err != nil {
		return fmt.Errorf("recording screenshot: %w", err)
	}

	v.metrics.RecordScreenshot(metrics.ScreenshotMetric{
		Stage:     stage,
		Path:      path,
		SizeBytes: shot.SizeBytes,
		Timestamp: start,
	})

	v.output.PrintProgress(fmt.Sprintf("  saved %s", path), time.Since(start))

	return nil
}

// release stops the browser, then the renderer. Failures are logged and do
// not change the outcome of the run.
func (v *Validator) release() {
	_ = v.phase(metrics.PhaseCleanup, func() error {
		var errs []error

		if err := v.driver.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing browser: %w", err))
		}

		if err := v.renderer.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stopping renderer: %w", err))
		}

		if err := errors.Join(errs...); err != nil {
			v.log.WithError(err).Warn("cleanup incomplete")
			return err
		}

		return nil
	})
}

func (v *Validator) phase(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	duration := time.Since(start)

	metric := metrics.PhaseMetric{Phase: name, Duration: duration, Timestamp: start}
	if err != nil {
		metric.Error = err.Error()
	}

	v.metrics.RecordPhase(metric)

	v.log.WithFields(logrus.Fields{
		"phase":    name,
		"duration": duration,
	}).Debug("phase finished")

	return err
}

// fail wraps err for the caller, which reports it once.
func (v *Validator) fail(err error) error {
	v.log.WithError(err).Debug("validation aborted")

	return fmt.Errorf("%w: %w", ErrValidationFailed, err)
}

// Compile-time interface compliance check
var _ Driver = (*browser.Chrome)(nil)
