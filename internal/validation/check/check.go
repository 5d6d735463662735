// Package check evaluates layout assertions against measurements collected
// from a rendered page.
package check

import (
	"time"
)

// Check names as they appear in the report.
const (
	NameCardHeight   = "Card Height Consistency"
	NameOverflow     = "Overflow Detection"
	NameReadMore     = "Read-More Links"
	NameClassApplied = "CSS Class Application"
)

// DefaultHeightTolerance is the maximum allowed spread between the tallest and
// the shortest card, exclusive.
const DefaultHeightTolerance = 10.0

// Result is the outcome of a single named check. Details are recorded whether
// or not the check passed.
type Result struct {
	Name     string         `json:"name"`
	Passed   bool           `json:"passed"`
	Details  map[string]any `json:"details"`
	Duration time.Duration  `json:"-"`
}

// Box is the scrollable and visible extent of an element.
type Box struct {
	ScrollWidth  float64 `json:"scrollWidth"`
	ScrollHeight float64 `json:"scrollHeight"`
	ClientWidth  float64 `json:"clientWidth"`
	ClientHeight float64 `json:"clientHeight"`
}

// Overflows reports whether content extends past the visible box on either axis.
func (b Box) Overflows() bool {
	return b.ScrollHeight > b.ClientHeight || b.ScrollWidth > b.ClientWidth
}

// Card holds the measurements taken for one card element.
type Card struct {
	Height      float64 `json:"height"`
	Summary     *Box    `json:"summary"`
	HasReadMore bool    `json:"hasReadMore"`
}

// ClassTally counts elements matched by the marker selector and how many of
// them actually carry the marker class.
type ClassTally struct {
	Matched   int `json:"matched"`
	WithClass int `json:"withClass"`
}

// Measurements is everything the checks need, gathered in one DOM evaluation.
// A non-empty *Error field means that part of the evaluation threw; the
// corresponding check is recorded as failed with the error in its details.
type Measurements struct {
	Cards        []Card     `json:"cards"`
	Classes      ClassTally `json:"classes"`
	CardsError   string     `json:"cardsError,omitempty"`
	ClassesError string     `json:"classesError,omitempty"`
}

// Heights returns the rendered height of every card, in document order.
func (m *Measurements) Heights() []float64 {
	heights := make([]float64, 0, len(m.Cards))
	for _, c := range m.Cards {
		heights = append(heights, c.Height)
	}

	return heights
}

// Func evaluates one check.
type Func func(m *Measurements) Result

// Battery returns the checks run against every page, in report order.
func Battery(heightTolerance float64) []Func {
	return []Func{
		func(m *Measurements) Result { return CardHeightConsistency(m, heightTolerance) },
		OverflowDetection,
		ReadMoreLinks,
		ClassApplication,
	}
}

// CardHeightConsistency passes when max(height) - min(height) < tolerance.
// With zero or one card the variance is 0.
func CardHeightConsistency(m *Measurements, tolerance float64) Result {
	if m.CardsError != "" {
		return measurementFailure(NameCardHeight, m.CardsError)
	}

	heights := m.Heights()
	minHeight, maxHeight := spread(heights)
	variance := maxHeight - minHeight

	return Result{
		Name:   NameCardHeight,
		Passed: variance < tolerance,
		Details: map[string]any{
			"heights":   heights,
			"variance":  variance,
			"maxHeight": maxHeight,
			"minHeight": minHeight,
			"tolerance": tolerance,
		},
	}
}

// OverflowDetection passes when no card's summary element overflows.
// Cards without a summary element are not counted as overflowing.
func OverflowDetection(m *Measurements) Result {
	if m.CardsError != "" {
		return measurementFailure(NameOverflow, m.CardsError)
	}

	overflowCount := 0
	for _, c := range m.Cards {
		if c.Summary != nil && c.Summary.Overflows() {
			overflowCount++
		}
	}

	return Result{
		Name:   NameOverflow,
		Passed: overflowCount == 0,
		Details: map[string]any{
			"overflowCount": overflowCount,
			"totalCards":    len(m.Cards),
		},
	}
}

// ReadMoreLinks passes when at least one card links to the page under test.
func ReadMoreLinks(m *Measurements) Result {
	if m.CardsError != "" {
		return measurementFailure(NameReadMore, m.CardsError)
	}

	readMoreCount := 0
	for _, c := range m.Cards {
		if c.HasReadMore {
			readMoreCount++
		}
	}

	return Result{
		Name:   NameReadMore,
		Passed: readMoreCount >= 1,
		Details: map[string]any{
			"readMoreCount": readMoreCount,
			"totalCards":    len(m.Cards),
		},
	}
}

// ClassApplication passes when every element matched by the marker selector
// reports the marker class in its class list.
func ClassApplication(m *Measurements) Result {
	if m.ClassesError != "" {
		return measurementFailure(NameClassApplied, m.ClassesError)
	}

	return Result{
		Name:   NameClassApplied,
		Passed: m.Classes.WithClass == m.Classes.Matched,
		Details: map[string]any{
			"elementsWithClass":    m.Classes.WithClass,
			"totalSummaryElements": m.Classes.Matched,
		},
	}
}

func measurementFailure(name, msg string) Result {
	return Result{
		Name:    name,
		Passed:  false,
		Details: map[string]any{"error": msg},
	}
}

// spread returns the min and max of values, or 0, 0 for an empty slice.
func spread(values []float64) (lo, hi float64) {
	if len(values) == 0 {
		return 0, 0
	}

	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	return lo, hi
}
