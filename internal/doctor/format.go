package doctor

import (
	"fmt"

	"github.com/ethpandaops/layoutcheck/internal/validation/table"
)

// Format renders the report as a table followed by a one-line verdict.
func Format(rep *Report, renderer table.Renderer) string {
	palette := table.NewPalette()

	rows := make([][]string, 0, len(rep.Results))
	for _, r := range rep.Results {
		detail := r.Detail
		if r.Err != nil {
			detail = palette.Outcome(false, r.Err.Error())
		}

		rows = append(rows, []string{r.Name, palette.CheckStatus(r.OK), detail, palette.Elapsed(r.Duration)})
	}

	verdict := palette.Outcome(true, "All prerequisites satisfied")
	if !rep.OK() {
		verdict = palette.Outcome(false, fmt.Sprintf("%d of %d prerequisites failed", rep.Failed, len(rep.Results)))
	}

	return renderer.Render(table.Table{
		Title:        "Doctor",
		Headers:      []string{"Check", "Status", "Detail", "Duration"},
		Rows:         rows,
		RightAligned: []int{3},
	}) + "\n" + verdict + "\n"
}
