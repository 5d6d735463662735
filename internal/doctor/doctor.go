// Package doctor checks that the prerequisites of a validation run are met.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ethpandaops/layoutcheck/internal/browser"
	"github.com/ethpandaops/layoutcheck/internal/renderer"
	"github.com/ethpandaops/layoutcheck/internal/validation/report"
)

const (
	probeTimeout    = 10 * time.Second
	notRequiredNote = "not required"
)

// Options describes the environment to check.
type Options struct {
	Renderer   renderer.Mode
	HugoBinary string
	Host       string
	Port       int
	SiteDir    string
	ChromePath string
	OutputDir  string
	TargetURL  string
}

// Probe is a single prerequisite check. Detail is shown whether or not it fails.
type Probe struct {
	Name string
	Run  func(ctx context.Context) (detail string, err error)
}

// Result is the outcome of a Probe.
type Result struct {
	Name     string
	OK       bool
	Detail   string
	Err      error
	Duration time.Duration
}

// Report holds every probe result in registration order.
type Report struct {
	Results []Result
	Passed  int
	Failed  int
}

// OK reports whether every probe passed.
func (r *Report) OK() bool {
	return r.Failed == 0
}

// Probes returns the checks relevant to opts.Renderer.
func Probes(log logrus.FieldLogger, opts Options) []Probe {
	addr := net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port))

	probes := []Probe{
		{Name: "Renderer binary", Run: func(ctx context.Context) (string, error) {
			if opts.Renderer != renderer.ModeHugo {
				return fmt.Sprintf("%s (%s mode)", notRequiredNote, opts.Renderer), nil
			}

			return binaryVersion(ctx, opts.HugoBinary)
		}},
		{Name: "Site directory", Run: func(context.Context) (string, error) {
			if opts.Renderer == renderer.ModeExternal {
				return fmt.Sprintf("%s (%s mode)", notRequiredNote, opts.Renderer), nil
			}

			return directoryExists(opts.SiteDir)
		}},
		{Name: "Chrome executable", Run: func(context.Context) (string, error) {
			return browser.FindExecutable(opts.ChromePath)
		}},
		{Name: "Output directory", Run: func(context.Context) (string, error) {
			tested, err := report.CheckWritable(opts.OutputDir)
			if err != nil {
				return opts.OutputDir, err
			}

			if filepath.Clean(tested) != filepath.Clean(opts.OutputDir) {
				return fmt.Sprintf("%s will be created under %s", opts.OutputDir, tested), nil
			}

			return opts.OutputDir + " is writable", nil
		}},
	}

	if opts.Renderer == renderer.ModeExternal {
		probes = append(probes, Probe{Name: "Renderer reachable", Run: func(ctx context.Context) (string, error) {
			err := renderer.WaitReady(ctx, log, opts.TargetURL, 2*time.Second, 250*time.Millisecond, nil)
			if err != nil {
				return opts.TargetURL, err
			}

			return opts.TargetURL + " answers", nil
		}})
	} else {
		probes = append(probes, Probe{Name: "Port available", Run: func(context.Context) (string, error) {
			return portFree(addr)
		}})
	}

	return probes
}

// Run executes probes concurrently and collects their results in order.
func Run(ctx context.Context, log logrus.FieldLogger, probes []Probe) *Report {
	log = log.WithField("component", "doctor")
	results := make([]Result, len(probes))

	g, gCtx := errgroup.WithContext(ctx)
	for i, p := range probes {
		i, p := i, p
		g.Go(func() error {
			probeCtx, cancel := context.WithTimeout(gCtx, probeTimeout)
			defer cancel()

			start := time.Now()
			detail, err := p.Run(probeCtx)

			results[i] = Result{
				Name:     p.Name,
				OK:       err == nil,
				Detail:   detail,
				Err:      err,
				Duration: time.Since(start),
			}

			log.WithFields(logrus.Fields{
				"probe":  p.Name,
				"ok":     err == nil,
				"detail": detail,
			}).Debug("probe finished")

			// A failed probe must not cancel its siblings.
			return nil
		})
	}

	_ = g.Wait()

	rep := &Report{Results: results}
	for _, r := range results {
		if r.OK {
			rep.Passed++
		} else {
			rep.Failed++
		}
	}

	return rep
}

func binaryVersion(ctx context.Context, binary string) (string, error) {
	path, err := exec.LookPath(binary)
	if err != nil {
		return binary, fmt.Errorf("%s not found on PATH: %w", binary, err)
	}

	out, err := exec.CommandContext(ctx, path, "version").Output() //nolint:gosec // G204: binary comes from operator configuration
	if err != nil {
		return path, fmt.Errorf("running %s version: %w", path, err)
	}

	// "hugo v0.139.0-... linux/amd64 BuildDate=..." -> "hugo v0.139.0-..."
	line, _, _ := strings.Cut(string(out), "\n")
	if words := strings.Fields(line); len(words) >= 2 {
		return words[0] + " " + words[1], nil
	}

	return path, nil
}

func directoryExists(dir string) (string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return dir, err
	}

	if !info.IsDir() {
		return dir, fmt.Errorf("%s is not a directory", dir)
	}

	return dir, nil
}

var errPortInUse = errors.New("port already in use")

func portFree(addr string) (string, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return addr, fmt.Errorf("%w: %w", errPortInUse, err)
	}

	if err := l.Close(); err != nil {
		return addr, fmt.Errorf("releasing %s: %w", addr, err)
	}

	return addr + " is free", nil
}
