package renderer

import (
	"context"

	"github.com/sirupsen/logrus"
)

// externalRenderer waits for a server managed outside this process.
type externalRenderer struct {
	log  logrus.FieldLogger
	opts Options
}

// NewExternalRenderer creates a renderer that only probes opts.ProbeURL.
func NewExternalRenderer(log logrus.FieldLogger, opts Options) Renderer {
	opts.applyDefaults()

	return &externalRenderer{
		log:  log.WithField("component", "renderer_external"),
		opts: opts,
	}
}

func (r *externalRenderer) Mode() Mode {
	return ModeExternal
}

func (r *externalRenderer) Start(ctx context.Context) error {
	r.log.WithField("url", r.opts.ProbeURL).Info("using externally managed renderer")

	return WaitReady(ctx, r.log, r.opts.ProbeURL, r.opts.StartupTimeout, r.opts.ProbeInterval, nil)
}

// Stop is a no-op; the external server outlives the run.
func (r *externalRenderer) Stop() error {
	return nil
}

// Compile-time interface compliance check
var _ Renderer = (*externalRenderer)(nil)
