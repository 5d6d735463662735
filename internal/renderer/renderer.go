// Package renderer manages the process that serves the site under test.
package renderer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// Mode selects how the site is served.
type Mode string

const (
	// ModeHugo spawns the static site generator's development server.
	ModeHugo Mode = "hugo"
	// ModeStatic serves an already-built site directory in-process.
	ModeStatic Mode = "static"
	// ModeExternal attaches to a server that is already running.
	ModeExternal Mode = "external"
)

const (
	defaultStartupTimeout = 30 * time.Second
	defaultProbeInterval  = 250 * time.Millisecond
	defaultStopGrace      = 5 * time.Second
)

var (
	// ErrStartupTimeout is returned when the renderer does not answer within the startup window.
	ErrStartupTimeout = errors.New("timeout waiting for renderer")
	// ErrProcessExited is returned when the renderer process exits before becoming ready.
	ErrProcessExited = errors.New("renderer process exited")
	// ErrUnknownMode is returned for an unsupported renderer mode.
	ErrUnknownMode = errors.New("unknown renderer mode")
)

// Renderer serves the site for the duration of a validation run.
type Renderer interface {
	// Start launches the renderer and blocks until it answers HTTP requests.
	Start(ctx context.Context) error
	// Stop releases the renderer. It is safe to call more than once and
	// after a failed Start.
	Stop() error
	// Mode reports which kind of renderer this is.
	Mode() Mode
}

// Options configures a Renderer.
type Options struct {
	Mode Mode
	// Binary is the generator executable for ModeHugo.
	Binary string
	Host   string
	Port   int
	// Dir is the site source directory for ModeHugo (the working directory of
	// the process) and the built output directory for ModeStatic.
	Dir string
	// ExtraArgs are appended to the generator's server arguments.
	ExtraArgs []string
	// Env is appended to the inherited environment of the generator process.
	Env []string
	// ProbeURL is polled until it answers; defaults to the server root.
	ProbeURL       string
	StartupTimeout time.Duration
	ProbeInterval  time.Duration
	StopGrace      time.Duration
}

// Addr returns host:port.
func (o *Options) Addr() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

// BaseURL returns the root URL the renderer serves.
func (o *Options) BaseURL() string {
	return fmt.Sprintf("http://%s/", o.Addr())
}

func (o *Options) applyDefaults() {
	if o.Host == "" {
		o.Host = "localhost"
	}

	if o.StartupTimeout <= 0 {
		o.StartupTimeout = defaultStartupTimeout
	}

	if o.ProbeInterval <= 0 {
		o.ProbeInterval = defaultProbeInterval
	}

	if o.StopGrace <= 0 {
		o.StopGrace = defaultStopGrace
	}

	if o.ProbeURL == "" {
		o.ProbeURL = o.BaseURL()
	}
}

// New creates the renderer selected by opts.Mode.
func New(log logrus.FieldLogger, opts Options) (Renderer, error) {
	opts.applyDefaults()

	switch opts.Mode {
	case ModeHugo, "":
		opts.Mode = ModeHugo
		return NewHugoRenderer(log, opts), nil
	case ModeStatic:
		return NewStaticRenderer(log, opts), nil
	case ModeExternal:
		return NewExternalRenderer(log, opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, opts.Mode)
	}
}

// ParseMode converts a string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeHugo, ModeStatic, ModeExternal:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q (expected hugo, static or external)", ErrUnknownMode, s)
	}
}
