package renderer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// staticRenderer serves a pre-built site directory from this process.
type staticRenderer struct {
	log  logrus.FieldLogger
	opts Options

	mu     sync.Mutex
	server *http.Server
	done   chan struct{}
}

// NewStaticRenderer creates a renderer that serves opts.Dir over HTTP.
func NewStaticRenderer(log logrus.FieldLogger, opts Options) Renderer {
	opts.applyDefaults()

	return &staticRenderer{
		log:  log.WithField("component", "renderer_static"),
		opts: opts,
	}
}

func (r *staticRenderer) Mode() Mode {
	return ModeStatic
}

func (r *staticRenderer) Start(ctx context.Context) error {
	info, err := os.Stat(r.opts.Dir)
	if err != nil {
		return fmt.Errorf("site directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("site directory %s is not a directory", r.opts.Dir)
	}

	listener, err := net.Listen("tcp", r.opts.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", r.opts.Addr(), err)
	}

	server := &http.Server{
		Handler:           http.FileServer(http.Dir(r.opts.Dir)),
		ReadHeaderTimeout: 5 * time.Second,
	}
	done := make(chan struct{})

	r.mu.Lock()
	r.server = server
	r.done = done
	r.mu.Unlock()

	r.log.WithFields(logrus.Fields{
		"dir":  r.opts.Dir,
		"addr": listener.Addr().String(),
	}).Info("serving site directory")

	go func() {
		defer close(done)

		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.log.WithError(err).Error("static server stopped")
		}
	}()

	return WaitReady(ctx, r.log, r.opts.ProbeURL, r.opts.StartupTimeout, r.opts.ProbeInterval, done)
}

func (r *staticRenderer) Stop() error {
	r.mu.Lock()
	server, done := r.server, r.done
	r.server = nil
	r.mu.Unlock()

	if server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.opts.StopGrace)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		_ = server.Close()
		return fmt.Errorf("shutting down static server: %w", err)
	}

	<-done

	r.log.Debug("static server stopped")

	return nil
}

// Compile-time interface compliance check
var _ Renderer = (*staticRenderer)(nil)
