// Package output provides human-friendly progress and result output.
package output

import (
	"fmt"
	"io"
	"time"

	"github.com/ethpandaops/layoutcheck/internal/validation/format"
	"github.com/ethpandaops/layoutcheck/internal/validation/metrics"
	"github.com/ethpandaops/layoutcheck/internal/validation/table"
	"github.com/fatih/color"
)

// Formatter provides clean, human-friendly output
type Formatter interface {
	PrintPhase(phase string)
	PrintProgress(message string, duration time.Duration)
	PrintPhaseTimings()
	PrintCheckResults()
	PrintSummary()
}

type formatter struct {
	writer  io.Writer
	verbose bool

	metrics          metrics.Collector
	phaseFormatter   *table.PhaseFormatter
	resultsFormatter *table.ResultsFormatter
	summaryFormatter *table.SummaryFormatter

	blue *color.Color
	gray *color.Color
}

// NewFormatter creates a new output formatter
func NewFormatter(
	writer io.Writer,
	verbose bool,
	metricsCollector metrics.Collector,
	phaseFormatter *table.PhaseFormatter,
	resultsFormatter *table.ResultsFormatter,
	summaryFormatter *table.SummaryFormatter,
) Formatter {
	return &formatter{
		writer:           writer,
		verbose:          verbose,
		metrics:          metricsCollector,
		phaseFormatter:   phaseFormatter,
		resultsFormatter: resultsFormatter,
		summaryFormatter: summaryFormatter,
		blue:             color.New(color.FgBlue),
		gray:             color.New(color.FgHiBlack),
	}
}

// PrintPhase prints phase separator
func (f *formatter) PrintPhase(phase string) {
	f.blue.Fprintf(f.writer, "\n▸ %s\n", phase)
}

// PrintProgress prints progress with timing
func (f *formatter) PrintProgress(message string, duration time.Duration) {
	if duration > 0 {
		f.gray.Fprintf(f.writer, "%s (%s)\n", message, format.Duration(duration))
	} else {
		fmt.Fprintf(f.writer, "%s\n", message)
	}
}

// PrintPhaseTimings prints per-phase durations; only shown in verbose mode
func (f *formatter) PrintPhaseTimings() {
	if !f.verbose {
		return
	}

	out := f.phaseFormatter.Format(f.metrics.GetPhaseMetrics())
	if out != "" {
		fmt.Fprintln(f.writer, out)
	}
}

// PrintCheckResults prints a table of check results
func (f *formatter) PrintCheckResults() {
	fmt.Fprintln(f.writer, f.resultsFormatter.Format(f.metrics.GetCheckMetrics()))
}

// PrintSummary prints a summary table with aggregate statistics
func (f *formatter) PrintSummary() {
	fmt.Fprintln(f.writer, f.summaryFormatter.Format(f.metrics.GetSummary()))
}
