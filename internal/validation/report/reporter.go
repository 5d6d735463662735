package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// ResultsFile is the name of the persisted report inside the output directory.
const ResultsFile = "validation-results.json"

// ErrPersistence indicates the output directory could not be written.
var ErrPersistence = errors.New("persisting results")

// Reporter turns a Report into on-disk and console artifacts.
type Reporter interface {
	Persist(r *Report) (string, error)
	PrintSummary(r *Report)
}

type reporter struct {
	outputDir string
	writer    io.Writer
	log       logrus.FieldLogger

	green *color.Color
	red   *color.Color
	bold  *color.Color
}

// NewReporter creates a reporter writing into outputDir and printing to writer.
func NewReporter(log logrus.FieldLogger, outputDir string, writer io.Writer) Reporter {
	if writer == nil {
		writer = os.Stdout
	}

	return &reporter{
		outputDir: outputDir,
		writer:    writer,
		log:       log.WithField("component", "reporter"),
		green:     color.New(color.FgGreen),
		red:       color.New(color.FgRed),
		bold:      color.New(color.Bold),
	}
}

// Persist writes the report as indented JSON, replacing any previous run's file.
// The file is written to a temporary name and renamed so readers never see a
// partially written report.
func (r *reporter) Persist(rep *Report) (string, error) {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling report: %w", err)
	}

	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: creating output directory: %w", ErrPersistence, err)
	}

	path := filepath.Join(r.outputDir, ResultsFile)

	if err := WriteFileAtomic(path, data); err != nil {
		return "", err
	}

	r.log.WithFields(logrus.Fields{
		"path":   path,
		"checks": rep.Summary.TotalTests,
	}).Info("validation results written")

	return path, nil
}

// PrintSummary writes the aggregate line, one line per check, then the
// details of every failed check.
func (r *reporter) PrintSummary(rep *Report) {
	r.bold.Fprintf(r.writer, "\nValidation complete: %d/%d checks passed\n",
		rep.Summary.PassedTests, rep.Summary.TotalTests)

	for _, t := range rep.Tests {
		if t.Passed {
			r.green.Fprintf(r.writer, "  ✓ %s\n", t.Name)
		} else {
			r.red.Fprintf(r.writer, "  ✗ %s\n", t.Name)
		}
	}

	failed := rep.Failed()
	if len(failed) == 0 {
		return
	}

	fmt.Fprintln(r.writer)

	for _, t := range failed {
		details, err := json.MarshalIndent(t.Details, "    ", "  ")
		if err != nil {
			fmt.Fprintf(r.writer, "  %s details: %v\n", t.Name, t.Details)
			continue
		}

		fmt.Fprintf(r.writer, "  %s details: %s\n", t.Name, details)
	}
}

// WriteFileAtomic writes data to path via a temporary file in the same
// directory followed by a rename. Failures are wrapped in ErrPersistence.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("%w: writing %s: %w", ErrPersistence, tmpName, err)
	}

	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("%w: closing %s: %w", ErrPersistence, tmpName, err)
	}

	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("%w: chmod %s: %w", ErrPersistence, tmpName, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("%w: renaming to %s: %w", ErrPersistence, path, err)
	}

	return nil
}

// ProbeWritable verifies that files can be created in dir, creating it if needed.
func ProbeWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating %s: %w", ErrPersistence, dir, err)
	}

	f, err := os.CreateTemp(dir, ".write-probe-*")
	if err != nil {
		return fmt.Errorf("%w: %s is not writable: %w", ErrPersistence, dir, err)
	}

	name := f.Name()
	_ = f.Close()

	if err := os.Remove(name); err != nil {
		return fmt.Errorf("%w: removing probe file: %w", ErrPersistence, err)
	}

	return nil
}

// CheckWritable reports whether ProbeWritable would succeed for dir without
// creating it. It returns the nearest existing directory that was tested.
func CheckWritable(dir string) (string, error) {
	current := filepath.Clean(dir)

	for {
		info, err := os.Stat(current)
		if err == nil {
			if !info.IsDir() {
				return current, fmt.Errorf("%w: %s is not a directory", ErrPersistence, current)
			}

			break
		}

		if !errors.Is(err, os.ErrNotExist) {
			return current, fmt.Errorf("%w: %w", ErrPersistence, err)
		}

		parent := filepath.Dir(current)
		if parent == current {
			return current, fmt.Errorf("%w: no existing parent for %s", ErrPersistence, dir)
		}

		current = parent
	}

	f, err := os.CreateTemp(current, ".write-probe-*")
	if err != nil {
		return current, fmt.Errorf("%w: %s is not writable: %w", ErrPersistence, current, err)
	}

	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)

	return current, nil
}

// Compile-time interface compliance check
var _ Reporter = (*reporter)(nil)
