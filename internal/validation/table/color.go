package table

import (
	"fmt"
	"time"

	"github.com/fatih/color"

	"github.com/ethpandaops/layoutcheck/internal/validation/format"
)

// Palette colors table cells by what they describe. When color.NoColor is
// set at construction every method returns plain text.
type Palette struct {
	enabled bool
}

// NewPalette creates a palette following the terminal color setting.
func NewPalette() *Palette {
	return &Palette{enabled: !color.NoColor}
}

func (p *Palette) paint(text string, attrs ...color.Attribute) string {
	if !p.enabled {
		return text
	}

	return color.New(attrs...).Sprint(text)
}

// Title formats a section heading.
func (p *Palette) Title(text string) string {
	return p.paint("▸ "+text, color.FgCyan, color.Bold)
}

// CheckStatus is the status cell of a check or prerequisite row.
func (p *Palette) CheckStatus(passed bool) string {
	if passed {
		return p.paint("✓ PASS", color.FgGreen)
	}

	return p.paint("✗ FAIL", color.FgRed)
}

// PhaseStatus is "ok" for a clean phase, otherwise the phase error in red.
func (p *Palette) PhaseStatus(phaseErr string) string {
	if phaseErr == "" {
		return p.paint("ok", color.FgGreen)
	}

	return p.paint(phaseErr, color.FgRed)
}

// Outcome colors a verdict or count green when ok and red otherwise.
func (p *Palette) Outcome(ok bool, text string) string {
	if ok {
		return p.paint(text, color.FgGreen)
	}

	return p.paint(text, color.FgRed)
}

// PassRate renders "passed (rate%)": green when every check passed, yellow
// when some did and red when none did.
func (p *Palette) PassRate(passed, total int) string {
	var rate float64
	if total > 0 {
		rate = float64(passed) / float64(total) * 100
	}

	text := fmt.Sprintf("%d (%.1f%%)", passed, rate)

	switch {
	case passed == total:
		return p.paint(text, color.FgGreen)
	case passed == 0:
		return p.paint(text, color.FgRed)
	default:
		return p.paint(text, color.FgYellow)
	}
}

// Screenshots renders the screenshot count with its total size. A run that
// produced checks but no screenshots is flagged in yellow.
func (p *Palette) Screenshots(count int, size int64) string {
	text := fmt.Sprintf("%d (%s)", count, format.Bytes(size))
	if count == 0 {
		return p.paint(text, color.FgYellow)
	}

	return text
}

// Details colors a measurement payload: red for a failed check, gray otherwise.
func (p *Palette) Details(text string, passed bool) string {
	if passed {
		return p.paint(text, color.FgHiBlack)
	}

	return p.paint(text, color.FgRed)
}

// FailedCheck is the heading of one entry in the failure details section.
func (p *Palette) FailedCheck(name string) string {
	return p.paint("✗", color.FgRed) + " " + p.paint(name, color.Bold)
}

// DetailKey colors a measurement name.
func (p *Palette) DetailKey(key string) string {
	return p.paint(key, color.FgCyan)
}

// Elapsed renders a duration in gray.
func (p *Palette) Elapsed(d time.Duration) string {
	return p.paint(format.Duration(d), color.FgHiBlack)
}
