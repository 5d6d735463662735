package validation

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpandaops/layoutcheck/internal/browser"
	"github.com/ethpandaops/layoutcheck/internal/renderer"
	"github.com/ethpandaops/layoutcheck/internal/validation/check"
	"github.com/ethpandaops/layoutcheck/internal/validation/metrics"
	"github.com/ethpandaops/layoutcheck/internal/validation/output"
	"github.com/ethpandaops/layoutcheck/internal/validation/report"
	"github.com/ethpandaops/layoutcheck/internal/validation/table"
)

type fakeRenderer struct {
	startErr error
	starts   int
	stops    int
}

func (f *fakeRenderer) Start(context.Context) error {
	f.starts++
	return f.startErr
}

func (f *fakeRenderer) Stop() error {
	f.stops++
	return nil
}

func (f *fakeRenderer) Mode() renderer.Mode { return renderer.ModeExternal }

type fakeDriver struct {
	measurements *check.Measurements
	openErr      error
	navigateErr  error
	measureErr   error
	shotErr      error

	calls    []string
	selector browser.Selectors
}

func (f *fakeDriver) Open(context.Context) error {
	f.calls = append(f.calls, "open")
	return f.openErr
}

func (f *fakeDriver) Navigate(_ context.Context, _ string) error {
	f.calls = append(f.calls, "navigate")
	return f.navigateErr
}

func (f *fakeDriver) Measure(_ context.Context, sel browser.Selectors) (*check.Measurements, error) {
	f.calls = append(f.calls, "measure")
	f.selector = sel

	if f.measureErr != nil {
		return nil, f.measureErr
	}

	return f.measurements, nil
}

func (f *fakeDriver) Screenshot(context.Context) ([]byte, error) {
	f.calls = append(f.calls, "screenshot")
	if f.shotErr != nil {
		return nil, f.shotErr
	}

	return []byte("\x89PNG fake"), nil
}

func (f *fakeDriver) Annotate(context.Context, string) (int, error) {
	f.calls = append(f.calls, "annotate")
	return len(f.measurements.Cards), nil
}

func (f *fakeDriver) Close() error {
	f.calls = append(f.calls, "close")
	return nil
}

func box(overflow bool) *check.Box {
	b := &check.Box{ScrollWidth: 200, ScrollHeight: 100, ClientWidth: 200, ClientHeight: 100}
	if overflow {
		b.ScrollHeight = 180
	}

	return b
}

func healthyPage() *check.Measurements {
	return &check.Measurements{
		Cards: []check.Card{
			{Height: 300, Summary: box(false), HasReadMore: true},
			{Height: 305, Summary: box(false), HasReadMore: false},
			{Height: 302, Summary: box(false), HasReadMore: true},
		},
		Classes: check.ClassTally{Matched: 3, WithClass: 3},
	}
}

type harness struct {
	validator *Validator
	renderer  *fakeRenderer
	driver    *fakeDriver
	cfg       *Config
	console   *bytes.Buffer
}

func newHarness(t *testing.T, m *check.Measurements) *harness {
	t.Helper()

	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})

	cfg := DefaultConfig()
	cfg.OutputDir = filepath.Join(t.TempDir(), "test-results")

	console := &bytes.Buffer{}
	collector := metrics.NewCollector(log)
	tables := table.NewRenderer(log)
	formatter := output.NewFormatter(
		console,
		false,
		collector,
		table.NewPhaseFormatter(log, tables),
		table.NewResultsFormatter(log, tables),
		table.NewSummaryFormatter(log, tables),
	)

	rend := &fakeRenderer{}
	driver := &fakeDriver{measurements: m}

	return &harness{
		validator: NewValidator(log, cfg, rend, driver, report.NewReporter(log, cfg.OutputDir, console), collector, formatter),
		renderer:  rend,
		driver:    driver,
		cfg:       cfg,
		console:   console,
	}
}

func (h *harness) resultsPath() string {
	return filepath.Join(h.cfg.OutputDir, report.ResultsFile)
}

func TestValidate_AllChecksPass(t *testing.T) {
	h := newHarness(t, healthyPage())

	rep, err := h.validator.Validate(context.Background())
	require.NoError(t, err)

	require.Len(t, rep.Tests, 4)
	assert.Equal(t, check.NameCardHeight, rep.Tests[0].Name)
	assert.Equal(t, check.NameOverflow, rep.Tests[1].Name)
	assert.Equal(t, check.NameReadMore, rep.Tests[2].Name)
	assert.Equal(t, check.NameClassApplied, rep.Tests[3].Name)
	assert.Equal(t, report.Summary{AllTestsPassed: true, TotalTests: 4, PassedTests: 4}, rep.Summary)
	assert.Equal(t, h.cfg.TargetURL, rep.TargetURL)

	assert.Equal(t,
		[]string{"open", "navigate", "measure", "screenshot", "annotate", "screenshot", "close"},
		h.driver.calls,
	)
	assert.Equal(t, 1, h.renderer.starts)
	assert.Equal(t, 1, h.renderer.stops)
	assert.Equal(t, h.cfg.Selectors(), h.driver.selector)

	assert.FileExists(t, h.resultsPath())
	assert.FileExists(t, filepath.Join(h.cfg.OutputDir, FullScreenshotFile))
	assert.FileExists(t, filepath.Join(h.cfg.OutputDir, AnnotatedScreenshotFile))
	require.Len(t, rep.Screenshots, 2)
	assert.Equal(t, StageFullPage, rep.Screenshots[0].Stage)
	assert.Equal(t, StageAnnotated, rep.Screenshots[1].Stage)

	assert.Contains(t, h.console.String(), "Validation complete: 4/4 checks passed")
}

func TestValidate_FailedChecksAreNotErrors(t *testing.T) {
	m := healthyPage()
	m.Cards[1].Height = 340
	m.Cards[2].Summary = box(true)

	h := newHarness(t, m)

	rep, err := h.validator.Validate(context.Background())
	require.NoError(t, err)

	assert.False(t, rep.Summary.AllTestsPassed)
	assert.Equal(t, 2, rep.Summary.FailedTests)
	assert.Equal(t, rep.Summary.TotalTests, rep.Summary.PassedTests+rep.Summary.FailedTests)

	failed := rep.Failed()
	require.Len(t, failed, 2)
	assert.Equal(t, check.NameCardHeight, failed[0].Name)
	assert.InDelta(t, 40.0, failed[0].Details["variance"], 0.001)
	assert.Equal(t, check.NameOverflow, failed[1].Name)
	assert.Equal(t, 1, failed[1].Details["overflowCount"])

	assert.FileExists(t, h.resultsPath())
}

func TestValidate_ScreenshotFailureReportsNoOutcomes(t *testing.T) {
	h := newHarness(t, healthyPage())
	h.driver.shotErr = errors.New("screenshot boom")

	rep, err := h.validator.Validate(context.Background())
	require.ErrorIs(t, err, ErrValidationFailed)
	assert.Nil(t, rep)
	assert.NoFileExists(t, h.resultsPath())

	console := h.console.String()
	assert.Contains(t, console, "evaluated "+check.NameCardHeight)
	assert.NotContains(t, console, "✓")
	assert.NotContains(t, console, "✗")
	assert.NotContains(t, console, "Validation complete")
	assert.NotContains(t, console, "screenshot boom", "the caller prints the error")

	assert.Equal(t, "close", h.driver.calls[len(h.driver.calls)-1])
	assert.Equal(t, 1, h.renderer.stops)
}

func TestValidate_EmptyPage(t *testing.T) {
	h := newHarness(t, &check.Measurements{})

	rep, err := h.validator.Validate(context.Background())
	require.NoError(t, err)

	byName := map[string]check.Result{}
	for _, r := range rep.Tests {
		byName[r.Name] = r
	}

	assert.True(t, byName[check.NameCardHeight].Passed)
	assert.True(t, byName[check.NameOverflow].Passed)
	assert.True(t, byName[check.NameClassApplied].Passed)
	assert.False(t, byName[check.NameReadMore].Passed)
	assert.Equal(t, 0, byName[check.NameReadMore].Details["readMoreCount"])
}

func TestValidate_SectionErrorFailsOnlyDependentChecks(t *testing.T) {
	h := newHarness(t, &check.Measurements{
		CardsError: "SyntaxError: '.ui..card' is not a valid selector",
		Classes:    check.ClassTally{Matched: 2, WithClass: 2},
	})

	rep, err := h.validator.Validate(context.Background())
	require.NoError(t, err)

	for _, r := range rep.Tests {
		switch r.Name {
		case check.NameClassApplied:
			assert.True(t, r.Passed)
		default:
			assert.False(t, r.Passed, r.Name)
			assert.Contains(t, r.Details["error"], "not a valid selector")
		}
	}
}

func TestValidate_RendererFailsToStart(t *testing.T) {
	h := newHarness(t, healthyPage())
	h.renderer.startErr = renderer.ErrStartupTimeout

	// Leftovers from an earlier run must not survive a failed run.
	require.NoError(t, os.MkdirAll(h.cfg.OutputDir, 0o755))
	require.NoError(t, os.WriteFile(h.resultsPath(), []byte(`{"summary":{"allTestsPassed":true}}`), 0o600))

	rep, err := h.validator.Validate(context.Background())
	require.Error(t, err)
	assert.Nil(t, rep)

	require.ErrorIs(t, err, ErrValidationFailed)
	require.ErrorIs(t, err, ErrRendererUnavailable)
	require.ErrorIs(t, err, renderer.ErrStartupTimeout)

	assert.NotContains(t, h.driver.calls, "open")
	assert.Equal(t, 1, h.renderer.stops, "renderer is released after a failed start")
	assert.NoFileExists(t, h.resultsPath())
}

func TestValidate_NavigationFailure(t *testing.T) {
	h := newHarness(t, healthyPage())
	h.driver.navigateErr = browser.ErrNavigationTimeout

	_, err := h.validator.Validate(context.Background())
	require.ErrorIs(t, err, ErrValidationFailed)
	require.ErrorIs(t, err, ErrRendererUnavailable)
	require.ErrorIs(t, err, browser.ErrNavigationTimeout)

	assert.Equal(t, []string{"open", "navigate", "close"}, h.driver.calls)
	assert.Equal(t, 1, h.renderer.stops)
	assert.NoFileExists(t, h.resultsPath())
}

func TestValidate_MeasurementFailure(t *testing.T) {
	h := newHarness(t, nil)
	h.driver.measureErr = errors.New("Execution context was destroyed")

	_, err := h.validator.Validate(context.Background())
	require.ErrorIs(t, err, ErrValidationFailed)
	require.ErrorIs(t, err, ErrMeasurement)

	assert.NotContains(t, h.driver.calls, "screenshot")
	assert.Contains(t, h.driver.calls, "close")
	assert.NoFileExists(t, h.resultsPath())
}

func TestValidate_BrowserLaunchFailure(t *testing.T) {
	h := newHarness(t, healthyPage())
	h.driver.openErr = browser.ErrChromeNotFound

	_, err := h.validator.Validate(context.Background())
	require.ErrorIs(t, err, ErrValidationFailed)
	require.ErrorIs(t, err, browser.ErrChromeNotFound)
	assert.Equal(t, 1, h.renderer.stops)
}

func TestValidate_UnwritableOutputDir(t *testing.T) {
	h := newHarness(t, healthyPage())

	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	h.cfg.OutputDir = filepath.Join(blocker, "test-results")

	_, err := h.validator.Validate(context.Background())
	require.ErrorIs(t, err, ErrValidationFailed)
	require.ErrorIs(t, err, ErrPersistence)

	assert.Equal(t, 0, h.renderer.starts, "nothing is started when results cannot be written")
	assert.Empty(t, h.driver.calls)
}

func TestValidate_RecordsPhaseMetrics(t *testing.T) {
	h := newHarness(t, healthyPage())

	_, err := h.validator.Validate(context.Background())
	require.NoError(t, err)

	var phases []string
	for _, p := range h.validator.metrics.GetPhaseMetrics() {
		phases = append(phases, p.Phase)
	}

	assert.Equal(t, []string{
		metrics.PhaseRendererStart,
		metrics.PhaseBrowserLaunch,
		metrics.PhaseNavigation,
		metrics.PhaseMeasurement,
		metrics.PhaseChecks,
		metrics.PhaseScreenshots,
		metrics.PhaseCleanup,
	}, phases)

	summary := h.validator.metrics.GetSummary()
	assert.Equal(t, 4, summary.TotalChecks)
	assert.Equal(t, 2, summary.Screenshots)
}
