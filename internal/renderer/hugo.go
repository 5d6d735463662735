package renderer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// hugoRenderer runs the generator's development server as a child process.
type hugoRenderer struct {
	log  logrus.FieldLogger
	opts Options

	mu      sync.Mutex
	cmd     *exec.Cmd
	exited  chan struct{}
	exitErr error
	stopped bool
}

// NewHugoRenderer creates a renderer that spawns `<binary> server` for opts.Dir.
func NewHugoRenderer(log logrus.FieldLogger, opts Options) Renderer {
	opts.applyDefaults()

	if opts.Binary == "" {
		opts.Binary = "hugo"
	}

	return &hugoRenderer{
		log:  log.WithField("component", "renderer_hugo"),
		opts: opts,
	}
}

func (r *hugoRenderer) Mode() Mode {
	return ModeHugo
}

// Args returns the command line passed to the generator binary.
func (r *hugoRenderer) Args() []string {
	args := []string{
		"server",
		"-D",
		"-p", strconv.Itoa(r.opts.Port),
		"--bind", r.opts.Host,
	}

	return append(args, r.opts.ExtraArgs...)
}

func (r *hugoRenderer) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.cmd != nil {
		r.mu.Unlock()
		return errors.New("renderer already started")
	}

	cmd := exec.Command(r.opts.Binary, r.Args()...) //nolint:gosec // G204: binary and args come from operator configuration
	cmd.Dir = r.opts.Dir
	cmd.Env = append(os.Environ(), r.opts.Env...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		r.mu.Unlock()
		return fmt.Errorf("creating stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		r.mu.Unlock()
		return fmt.Errorf("creating stderr pipe: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"binary": r.opts.Binary,
		"dir":    r.opts.Dir,
		"addr":   r.opts.Addr(),
	}).Info("starting renderer")

	if err := cmd.Start(); err != nil {
		r.mu.Unlock()
		return fmt.Errorf("starting %s: %w", r.opts.Binary, err)
	}

	r.cmd = cmd
	r.exited = make(chan struct{})
	r.mu.Unlock()

	go r.supervise(cmd, stdout, stderr)

	if err := WaitReady(ctx, r.log, r.opts.ProbeURL, r.opts.StartupTimeout, r.opts.ProbeInterval, r.exited); err != nil {
		if errors.Is(err, ErrProcessExited) {
			r.mu.Lock()
			exitErr := r.exitErr
			r.mu.Unlock()

			return fmt.Errorf("%w before becoming ready: %v", ErrProcessExited, exitErr)
		}

		return err
	}

	r.log.WithField("url", r.opts.ProbeURL).Info("renderer is ready")

	return nil
}

// supervise drains the process output into the logger and records its exit.
func (r *hugoRenderer) supervise(cmd *exec.Cmd, stdout, stderr io.Reader) {
	var g errgroup.Group

	g.Go(func() error { return r.pump(stdout, logrus.DebugLevel) })
	g.Go(func() error { return r.pump(stderr, logrus.WarnLevel) })

	if err := g.Wait(); err != nil {
		r.log.WithError(err).Debug("renderer output stream closed with error")
	}

	err := cmd.Wait()

	r.mu.Lock()
	r.exitErr = err
	stopped := r.stopped
	r.mu.Unlock()

	if !stopped {
		r.log.WithError(err).Warn("renderer process exited unexpectedly")
	}

	close(r.exited)
}

func (r *hugoRenderer) pump(src io.Reader, level logrus.Level) error {
	scanner := bufio.NewScanner(src)
	for scanner.Scan() {
		r.log.WithField("stream", level.String()).Log(level, scanner.Text())
	}

	return scanner.Err()
}

func (r *hugoRenderer) Stop() error {
	r.mu.Lock()
	cmd := r.cmd
	exited := r.exited

	if cmd == nil || r.stopped {
		r.mu.Unlock()
		return nil
	}

	r.stopped = true
	r.mu.Unlock()

	select {
	case <-exited:
		return nil
	default:
	}

	r.log.Info("stopping renderer")

	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		r.log.WithError(err).Debug("graceful signal failed, killing renderer")

		if killErr := cmd.Process.Kill(); killErr != nil && !errors.Is(killErr, os.ErrProcessDone) {
			return fmt.Errorf("killing renderer: %w", killErr)
		}
	}

	select {
	case <-exited:
	case <-time.After(r.opts.StopGrace):
		r.log.WithField("grace", r.opts.StopGrace).Warn("renderer ignored SIGTERM, killing")

		if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			return fmt.Errorf("killing renderer: %w", err)
		}

		<-exited
	}

	r.log.Debug("renderer stopped")

	return nil
}

// Compile-time interface compliance check
var _ Renderer = (*hugoRenderer)(nil)
