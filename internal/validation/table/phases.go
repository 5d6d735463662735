package table

import (
	"github.com/ethpandaops/layoutcheck/internal/validation/format"
	"github.com/ethpandaops/layoutcheck/internal/validation/metrics"
	"github.com/sirupsen/logrus"
)

// PhaseFormatter formats per-phase timings as a table.
type PhaseFormatter struct {
	log      logrus.FieldLogger
	renderer Renderer
	palette  *Palette
}

// NewPhaseFormatter creates a new phase table formatter.
func NewPhaseFormatter(log logrus.FieldLogger, renderer Renderer) *PhaseFormatter {
	return &PhaseFormatter{
		log:      log.WithField("component", "table.phase_formatter"),
		renderer: renderer,
		palette:  NewPalette(),
	}
}

// Format converts phase metrics into a formatted table string.
func (f *PhaseFormatter) Format(phases []metrics.PhaseMetric) string {
	if len(phases) == 0 {
		return ""
	}

	rows := make([][]string, 0, len(phases))
	for _, p := range phases {
		rows = append(rows, []string{p.Phase, format.Duration(p.Duration), f.palette.PhaseStatus(p.Error)})
	}

	return f.renderer.Render(Table{
		Title:        "Phases",
		Headers:      []string{"Phase", "Duration", "Status"},
		Rows:         rows,
		RightAligned: []int{1},
	})
}
