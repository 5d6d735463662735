package table

import (
	"strconv"

	"github.com/ethpandaops/layoutcheck/internal/validation/format"
	"github.com/ethpandaops/layoutcheck/internal/validation/metrics"
	"github.com/sirupsen/logrus"
)

// SummaryFormatter formats summary statistics as a table.
type SummaryFormatter struct {
	log      logrus.FieldLogger
	renderer Renderer
	palette  *Palette
}

// NewSummaryFormatter creates a new summary table formatter.
func NewSummaryFormatter(log logrus.FieldLogger, renderer Renderer) *SummaryFormatter {
	return &SummaryFormatter{
		log:      log.WithField("component", "table.summary_formatter"),
		renderer: renderer,
		palette:  NewPalette(),
	}
}

// Format converts summary metrics into a formatted table string.
func (f *SummaryFormatter) Format(summary metrics.SummaryMetric) string {
	return f.renderer.Render(Table{
		Title:   "Summary",
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Total Checks", strconv.Itoa(summary.TotalChecks)},
			{"Passed", f.palette.PassRate(summary.PassedChecks, summary.TotalChecks)},
			{"Failed", f.palette.Outcome(summary.FailedChecks == 0, strconv.Itoa(summary.FailedChecks))},
			{"Screenshots", f.palette.Screenshots(summary.Screenshots, summary.ScreenshotBytes)},
			{"Total Duration", format.Duration(summary.TotalDuration)},
		},
	})
}
