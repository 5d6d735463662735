package validation

import (
	"errors"

	"github.com/ethpandaops/layoutcheck/internal/validation/report"
)

var (
	// ErrRendererUnavailable means the site could not be served or the page
	// could not be loaded in time.
	ErrRendererUnavailable = errors.New("renderer unavailable")
	// ErrMeasurement means the DOM measurement evaluation failed as a whole.
	ErrMeasurement = errors.New("measurement failed")
	// ErrPersistence means an artifact could not be written to the output directory.
	ErrPersistence = report.ErrPersistence
	// ErrValidationFailed wraps every infrastructure failure of a run.
	ErrValidationFailed = errors.New("validation run failed")
	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid configuration")
)
