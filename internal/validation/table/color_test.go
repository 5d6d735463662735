package table

import (
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func plainPalette(t *testing.T) *Palette {
	t.Helper()

	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	return NewPalette()
}

func TestPalette_Statuses(t *testing.T) {
	p := plainPalette(t)

	assert.Equal(t, "✓ PASS", p.CheckStatus(true))
	assert.Equal(t, "✗ FAIL", p.CheckStatus(false))
	assert.Equal(t, "ok", p.PhaseStatus(""))
	assert.Equal(t, "screenshot failed", p.PhaseStatus("screenshot failed"))
	assert.Equal(t, "▸ Phases", p.Title("Phases"))
	assert.Equal(t, "✗ Overflow Detection", p.FailedCheck("Overflow Detection"))
	assert.Equal(t, "120ms", p.Elapsed(120*time.Millisecond))
}

func TestPalette_PassRate(t *testing.T) {
	p := plainPalette(t)

	tests := []struct {
		name     string
		passed   int
		total    int
		expected string
	}{
		{name: "all passed", passed: 4, total: 4, expected: "4 (100.0%)"},
		{name: "partial pass", passed: 3, total: 4, expected: "3 (75.0%)"},
		{name: "all failed", passed: 0, total: 4, expected: "0 (0.0%)"},
		{name: "empty battery", passed: 0, total: 0, expected: "0 (0.0%)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, p.PassRate(tt.passed, tt.total))
		})
	}
}

func TestPalette_Screenshots(t *testing.T) {
	p := plainPalette(t)

	assert.Equal(t, "2 (2.0 KB)", p.Screenshots(2, 2048))
	assert.Equal(t, "0 (0 B)", p.Screenshots(0, 0))
}

func TestPalette_ColoredWhenEnabled(t *testing.T) {
	previous := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = previous })

	p := NewPalette()

	assert.NotEqual(t, "✓ PASS", p.CheckStatus(true))
	assert.Contains(t, p.CheckStatus(true), "✓ PASS")
	assert.Contains(t, p.Details("variance=20px", false), "variance=20px")
}

func TestRenderer_TitleAndAlignment(t *testing.T) {
	plainPalette(t)

	out := NewRenderer(logrus.New()).Render(Table{
		Title:        "Phases",
		Headers:      []string{"Phase", "Duration"},
		Rows:         [][]string{{"navigation", "5ms"}, {"screenshots", "1200ms"}},
		RightAligned: []int{1, 7},
	})

	assert.Contains(t, out, "▸ Phases")
	assert.Contains(t, out, "Duration")
	assert.Contains(t, out, "navigation")
	assert.Regexp(t, `\s+5ms │`, out)
}
