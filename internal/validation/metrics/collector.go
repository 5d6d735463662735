// Package metrics provides validation run metrics collection and aggregation.
package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Phase names recorded by the validator.
const (
	PhaseRendererStart = "renderer start"
	PhaseBrowserLaunch = "browser launch"
	PhaseNavigation    = "navigation"
	PhaseMeasurement   = "measurement"
	PhaseChecks        = "checks"
	PhaseScreenshots   = "screenshots"
	PhaseCleanup       = "cleanup"
)

// PhaseMetric captures how long one stage of the run took.
type PhaseMetric struct {
	Phase     string
	Duration  time.Duration
	Error     string
	Timestamp time.Time
}

// CheckResultMetric captures the outcome of one check.
type CheckResultMetric struct {
	Name      string
	Passed    bool
	Duration  time.Duration
	Details   map[string]any
	Timestamp time.Time
}

// ScreenshotMetric captures a written screenshot.
type ScreenshotMetric struct {
	Stage     string
	Path      string
	SizeBytes int64
	Timestamp time.Time
}

// SummaryMetric provides aggregate statistics across the run.
type SummaryMetric struct {
	TotalDuration   time.Duration
	TotalChecks     int
	PassedChecks    int
	FailedChecks    int
	Screenshots     int
	ScreenshotBytes int64
}

// Collector interface for metrics collection
type Collector interface {
	Start(ctx context.Context) error
	Stop() error
	RecordPhase(metric PhaseMetric)
	RecordCheckResult(metric *CheckResultMetric)
	RecordScreenshot(metric ScreenshotMetric)
	GetPhaseMetrics() []PhaseMetric
	GetCheckMetrics() []CheckResultMetric
	GetScreenshotMetrics() []ScreenshotMetric
	GetSummary() SummaryMetric
}

// collector implements Collector interface
type collector struct {
	log               logrus.FieldLogger
	mu                sync.RWMutex
	phaseMetrics      []PhaseMetric
	checkMetrics      []CheckResultMetric
	screenshotMetrics []ScreenshotMetric
	startTime         time.Time
	stopTime          time.Time
}

// NewCollector creates a new metrics collector
func NewCollector(log logrus.FieldLogger) Collector {
	return &collector{
		log:               log.WithField("component", "metrics_collector"),
		phaseMetrics:      make([]PhaseMetric, 0, 8),
		checkMetrics:      make([]CheckResultMetric, 0, 4),
		screenshotMetrics: make([]ScreenshotMetric, 0, 2),
	}
}

func (c *collector) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startTime = time.Now()
	c.stopTime = time.Time{}

	c.log.Debug("metrics collector started")

	return nil
}

func (c *collector) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTime = time.Now()

	c.log.Debug("metrics collector stopped")

	return nil
}

func (c *collector) RecordPhase(metric PhaseMetric) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phaseMetrics = append(c.phaseMetrics, metric)
}

func (c *collector) RecordCheckResult(metric *CheckResultMetric) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkMetrics = append(c.checkMetrics, *metric)
}

func (c *collector) RecordScreenshot(metric ScreenshotMetric) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.screenshotMetrics = append(c.screenshotMetrics, metric)
}

func (c *collector) GetPhaseMetrics() []PhaseMetric {
	c.mu.RLock()
	defer c.mu.RUnlock()
	// Return copy to avoid race conditions
	result := make([]PhaseMetric, len(c.phaseMetrics))
	copy(result, c.phaseMetrics)
	return result
}

func (c *collector) GetCheckMetrics() []CheckResultMetric {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]CheckResultMetric, len(c.checkMetrics))
	copy(result, c.checkMetrics)
	return result
}

func (c *collector) GetScreenshotMetrics() []ScreenshotMetric {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]ScreenshotMetric, len(c.screenshotMetrics))
	copy(result, c.screenshotMetrics)
	return result
}

func (c *collector) GetSummary() SummaryMetric {
	c.mu.RLock()
	defer c.mu.RUnlock()

	end := c.stopTime
	if end.IsZero() {
		end = time.Now()
	}

	var totalDuration time.Duration
	if !c.startTime.IsZero() {
		totalDuration = end.Sub(c.startTime)
	}

	passed := 0
	failed := 0
	for _, cm := range c.checkMetrics {
		if cm.Passed {
			passed++
		} else {
			failed++
		}
	}

	totalSize := int64(0)
	for _, sm := range c.screenshotMetrics {
		totalSize += sm.SizeBytes
	}

	return SummaryMetric{
		TotalDuration:   totalDuration,
		TotalChecks:     len(c.checkMetrics),
		PassedChecks:    passed,
		FailedChecks:    failed,
		Screenshots:     len(c.screenshotMetrics),
		ScreenshotBytes: totalSize,
	}
}

// Compile-time interface compliance check
var _ Collector = (*collector)(nil)
