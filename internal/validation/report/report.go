// Package report assembles validation results into an immutable report and
// writes it to disk and to the console.
package report

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethpandaops/layoutcheck/internal/validation/check"
)

var (
	// ErrDuplicateCheck is returned when a check name is added twice.
	ErrDuplicateCheck = errors.New("duplicate check name")
	// ErrReportSealed is returned when adding to a builder that already built its report.
	ErrReportSealed = errors.New("report already built")
)

// Screenshot is an image captured at a named stage of the run.
type Screenshot struct {
	Stage     string `json:"stage"`
	Path      string `json:"path"`
	SizeBytes int64  `json:"sizeBytes"`
}

// Summary aggregates the check outcomes.
type Summary struct {
	AllTestsPassed bool `json:"allTestsPassed"`
	TotalTests     int  `json:"totalTests"`
	PassedTests    int  `json:"passedTests"`
	FailedTests    int  `json:"failedTests"`
}

// Report is the result of one validation run. Reports are only produced by
// Builder.Build and must not be modified afterwards.
type Report struct {
	Timestamp   time.Time      `json:"timestamp"`
	TargetURL   string         `json:"targetUrl,omitempty"`
	Tests       []check.Result `json:"tests"`
	Summary     Summary        `json:"summary"`
	Screenshots []Screenshot   `json:"screenshots,omitempty"`
}

// Failed returns the results of the checks that did not pass.
func (r *Report) Failed() []check.Result {
	failed := make([]check.Result, 0, r.Summary.FailedTests)
	for _, t := range r.Tests {
		if !t.Passed {
			failed = append(failed, t)
		}
	}

	return failed
}

// Builder accumulates check results during a run. The summary is computed
// only in Build, so no partial summary is ever observable.
type Builder struct {
	mu          sync.Mutex
	timestamp   time.Time
	targetURL   string
	tests       []check.Result
	names       map[string]struct{}
	screenshots []Screenshot
	built       bool
}

// NewBuilder starts an empty report stamped with the run start time.
func NewBuilder(timestamp time.Time, targetURL string) *Builder {
	return &Builder{
		timestamp: timestamp.UTC(),
		targetURL: targetURL,
		tests:     make([]check.Result, 0, 4),
		names:     make(map[string]struct{}, 4),
	}
}

// Add appends a check result. Names must be unique within a report.
func (b *Builder) Add(result check.Result) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.built {
		return ErrReportSealed
	}

	if _, ok := b.names[result.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateCheck, result.Name)
	}

	if result.Details == nil {
		result.Details = map[string]any{}
	}

	b.names[result.Name] = struct{}{}
	b.tests = append(b.tests, result)

	return nil
}

// AddScreenshot records a captured screenshot.
func (b *Builder) AddScreenshot(s Screenshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.built {
		return ErrReportSealed
	}

	b.screenshots = append(b.screenshots, s)

	return nil
}

// Build seals the builder and returns the finished report.
func (b *Builder) Build() *Report {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.built = true

	tests := make([]check.Result, len(b.tests))
	copy(tests, b.tests)

	var screenshots []Screenshot
	if len(b.screenshots) > 0 {
		screenshots = make([]Screenshot, len(b.screenshots))
		copy(screenshots, b.screenshots)
	}

	return &Report{
		Timestamp:   b.timestamp,
		TargetURL:   b.targetURL,
		Tests:       tests,
		Summary:     Summarize(tests),
		Screenshots: screenshots,
	}
}

// Summarize computes the aggregate counts for a set of results.
func Summarize(results []check.Result) Summary {
	passed := 0
	for _, r := range results {
		if r.Passed {
			passed++
		}
	}

	failed := len(results) - passed

	return Summary{
		AllTestsPassed: failed == 0,
		TotalTests:     len(results),
		PassedTests:    passed,
		FailedTests:    failed,
	}
}
