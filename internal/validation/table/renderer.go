// Package table renders validation metrics as terminal tables.
package table

import (
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
)

// Table is one titled console table. Columns listed in RightAligned hold
// durations or counts and are aligned right.
type Table struct {
	Title        string
	Headers      []string
	Rows         [][]string
	RightAligned []int
}

// Renderer draws the phase, check result, summary and doctor tables.
type Renderer interface {
	Render(t Table) string
}

type renderer struct {
	log     logrus.FieldLogger
	palette *Palette
}

// NewRenderer creates a table renderer.
func NewRenderer(log logrus.FieldLogger) Renderer {
	return &renderer{
		log:     log.WithField("component", "table.renderer"),
		palette: NewPalette(),
	}
}

func (r *renderer) Render(t Table) string {
	var sb strings.Builder

	if t.Title != "" {
		sb.WriteString("\n" + r.palette.Title(t.Title) + "\n\n")
	}

	tw := tablewriter.NewWriter(&sb)
	tw.SetHeader(t.Headers)
	tw.SetAutoWrapText(false)
	tw.SetAutoFormatHeaders(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetCenterSeparator("┼")
	tw.SetColumnSeparator("│")
	tw.SetRowSeparator("─")

	alignment := make([]int, len(t.Headers))
	for i := range alignment {
		alignment[i] = tablewriter.ALIGN_LEFT
	}

	for _, col := range t.RightAligned {
		if col >= 0 && col < len(alignment) {
			alignment[col] = tablewriter.ALIGN_RIGHT
		}
	}

	tw.SetColumnAlignment(alignment)
	tw.AppendBulk(t.Rows)
	tw.Render()

	r.log.WithFields(logrus.Fields{
		"table": t.Title,
		"rows":  len(t.Rows),
	}).Debug("rendered table")

	return sb.String()
}

var _ Renderer = (*renderer)(nil)
