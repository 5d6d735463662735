package table

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ethpandaops/layoutcheck/internal/validation/format"
	"github.com/ethpandaops/layoutcheck/internal/validation/metrics"
	"github.com/sirupsen/logrus"
)

// maxDetailWidth is the widest a details cell may get before it is truncated.
const maxDetailWidth = 60

// ResultsFormatter formats check results as a table.
type ResultsFormatter struct {
	log      logrus.FieldLogger
	renderer Renderer
	palette  *Palette
}

// NewResultsFormatter creates a new results table formatter.
func NewResultsFormatter(log logrus.FieldLogger, renderer Renderer) *ResultsFormatter {
	return &ResultsFormatter{
		log:      log.WithField("component", "table.results_formatter"),
		renderer: renderer,
		palette:  NewPalette(),
	}
}

// Format converts check metrics into a formatted table string with failure details.
func (f *ResultsFormatter) Format(checkMetrics []metrics.CheckResultMetric) string {
	if len(checkMetrics) == 0 {
		return "No checks executed"
	}

	var (
		rows         = make([][]string, 0, len(checkMetrics))
		failedChecks = make([]metrics.CheckResultMetric, 0)
	)

	for _, metric := range checkMetrics {
		if !metric.Passed {
			failedChecks = append(failedChecks, metric)
		}

		details := compactDetails(metric.Details)
		if len(details) > maxDetailWidth {
			details = details[:maxDetailWidth-3] + "..."
		}

		rows = append(rows, []string{
			metric.Name,
			f.palette.CheckStatus(metric.Passed),
			format.Duration(metric.Duration),
			f.palette.Details(details, metric.Passed),
		})
	}

	output := f.renderer.Render(Table{
		Title:        "Check Results",
		Headers:      []string{"Check", "Status", "Duration", "Details"},
		Rows:         rows,
		RightAligned: []int{2},
	})

	if len(failedChecks) > 0 {
		output += f.formatFailureDetails(failedChecks)
	}

	return output
}

// formatFailureDetails creates a detailed section listing every measurement
// recorded for the failed checks.
func (f *ResultsFormatter) formatFailureDetails(failed []metrics.CheckResultMetric) string {
	var builder strings.Builder

	builder.WriteString("\n\n" + f.palette.Title("Failed Check Details") + "\n\n")

	for i, c := range failed {
		if i > 0 {
			builder.WriteString("\n")
		}

		builder.WriteString(f.palette.FailedCheck(c.Name) + "\n")

		if len(c.Details) == 0 {
			builder.WriteString("  (no details recorded)\n")
			continue
		}

		for _, key := range sortedKeys(c.Details) {
			builder.WriteString(fmt.Sprintf("  %s: %s\n", f.palette.DetailKey(key), formatValue(c.Details[key])))
		}
	}

	return builder.String()
}

// compactDetails renders details as key=value pairs in key order.
func compactDetails(details map[string]any) string {
	if len(details) == 0 {
		return ""
	}

	parts := make([]string, 0, len(details))
	for _, key := range sortedKeys(details) {
		parts = append(parts, fmt.Sprintf("%s=%s", key, formatValue(details[key])))
	}

	return strings.Join(parts, " ")
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return format.Pixels(val)
	case []float64:
		items := make([]string, 0, len(val))
		for _, item := range val {
			items = append(items, format.Pixels(item))
		}
		return "[" + strings.Join(items, ", ") + "]"
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
