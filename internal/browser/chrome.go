// Package browser drives a headless Chrome instance over the DevTools protocol.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/layoutcheck/internal/validation/check"
)

const (
	defaultNavigationTimeout = 30 * time.Second
	defaultViewportWidth     = 1280
	defaultViewportHeight    = 720
)

var (
	// ErrNotOpen is returned when an operation runs before Open or after Close.
	ErrNotOpen = errors.New("browser is not open")
	// ErrNavigationTimeout is returned when the page never reaches network idle.
	ErrNavigationTimeout = errors.New("timeout waiting for network idle")
)

// Options configures the Chrome instance.
type Options struct {
	ExecPath          string
	Headless          bool
	ViewportWidth     int
	ViewportHeight    int
	NavigationTimeout time.Duration
}

// Chrome is a single-tab headless browser session.
type Chrome struct {
	log  logrus.FieldLogger
	opts Options

	mu            sync.Mutex
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewChrome creates a browser driver. Nothing is launched until Open.
func NewChrome(log logrus.FieldLogger, opts Options) *Chrome {
	if opts.ViewportWidth <= 0 {
		opts.ViewportWidth = defaultViewportWidth
	}

	if opts.ViewportHeight <= 0 {
		opts.ViewportHeight = defaultViewportHeight
	}

	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = defaultNavigationTimeout
	}

	return &Chrome{
		log:  log.WithField("component", "browser"),
		opts: opts,
	}
}

// Open launches Chrome. The browser is killed when ctx is cancelled.
func (c *Chrome) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.browserCtx != nil {
		return errors.New("browser already open")
	}

	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts,
		chromedp.Flag("headless", c.opts.Headless),
		chromedp.WindowSize(c.opts.ViewportWidth, c.opts.ViewportHeight),
	)

	if c.opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(c.opts.ExecPath))
	}

	// Chrome refuses to start its sandbox as root, which is the norm in containers.
	if os.Geteuid() == 0 {
		allocOpts = append(allocOpts, chromedp.NoSandbox)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(c.log.Debugf),
		chromedp.WithErrorf(c.log.Debugf),
	)

	c.log.WithFields(logrus.Fields{
		"headless": c.opts.Headless,
		"viewport": fmt.Sprintf("%dx%d", c.opts.ViewportWidth, c.opts.ViewportHeight),
	}).Debug("launching browser")

	start := time.Now()

	// The first Run on a fresh context starts the browser process.
	if err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(int64(c.opts.ViewportWidth), int64(c.opts.ViewportHeight)),
	); err != nil {
		browserCancel()
		allocCancel()

		return fmt.Errorf("launching chrome: %w", err)
	}

	c.allocCancel = allocCancel
	c.browserCtx = browserCtx
	c.browserCancel = browserCancel

	c.log.WithField("duration", time.Since(start)).Info("browser launched")

	return nil
}

// Navigate loads url and waits until the network has been idle, bounded by
// the navigation timeout.
func (c *Chrome) Navigate(ctx context.Context, url string) error {
	runCtx, cancel, err := c.runContext(ctx, c.opts.NavigationTimeout)
	if err != nil {
		return err
	}
	defer cancel()

	watcher := newIdleWatcher()
	chromedp.ListenTarget(runCtx, watcher.handle)

	c.log.WithField("url", url).Info("navigating")

	err = chromedp.Run(runCtx,
		page.SetLifecycleEventsEnabled(true),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameID, loaderID, errorText, err := page.Navigate(url).Do(ctx)
			if err != nil {
				return err
			}

			if errorText != "" {
				return fmt.Errorf("page load error %s", errorText)
			}

			// Same-document navigations start no new loader.
			if loaderID == "" {
				return nil
			}

			watcher.expect(frameID, loaderID)

			select {
			case <-watcher.idle:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w after %s: %w", ErrNavigationTimeout, c.opts.NavigationTimeout, err)
		}

		return fmt.Errorf("navigating to %s: %w", url, err)
	}

	return nil
}

// Measure evaluates the batched measurement script against the loaded page.
func (c *Chrome) Measure(ctx context.Context, sel Selectors) (*check.Measurements, error) {
	script, err := MeasureScript(sel)
	if err != nil {
		return nil, err
	}

	runCtx, cancel, err := c.runContext(ctx, 0)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var m check.Measurements
	if err := chromedp.Run(runCtx, chromedp.Evaluate(script, &m)); err != nil {
		return nil, fmt.Errorf("evaluating measurement script: %w", err)
	}

	c.log.WithFields(logrus.Fields{
		"cards":           len(m.Cards),
		"summaryElements": m.Classes.Matched,
	}).Debug("collected measurements")

	return &m, nil
}

// Screenshot captures the full page as PNG.
func (c *Chrome) Screenshot(ctx context.Context) ([]byte, error) {
	runCtx, cancel, err := c.runContext(ctx, 0)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var buf []byte
	// Quality 100 selects lossless PNG encoding.
	if err := chromedp.Run(runCtx, chromedp.FullScreenshot(&buf, 100)); err != nil {
		return nil, fmt.Errorf("capturing screenshot: %w", err)
	}

	return buf, nil
}

// Annotate outlines every card in red and returns how many were outlined.
func (c *Chrome) Annotate(ctx context.Context, cardSelector string) (int, error) {
	script, err := AnnotateScript(cardSelector)
	if err != nil {
		return 0, err
	}

	runCtx, cancel, err := c.runContext(ctx, 0)
	if err != nil {
		return 0, err
	}
	defer cancel()

	var count int
	if err := chromedp.Run(runCtx, chromedp.Evaluate(script, &count)); err != nil {
		return 0, fmt.Errorf("annotating cards: %w", err)
	}

	return count, nil
}

// Close shuts the browser down. It is safe to call more than once.
func (c *Chrome) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.browserCtx == nil {
		return nil
	}

	err := chromedp.Cancel(c.browserCtx)

	c.browserCancel()
	c.allocCancel()

	c.browserCtx = nil
	c.browserCancel = nil
	c.allocCancel = nil

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("closing browser: %w", err)
	}

	c.log.Debug("browser closed")

	return nil
}

// runContext derives a context for one operation from the browser context,
// cancelled when ctx is cancelled or the timeout elapses.
func (c *Chrome) runContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc, error) {
	c.mu.Lock()
	browserCtx := c.browserCtx
	c.mu.Unlock()

	if browserCtx == nil {
		return nil, nil, ErrNotOpen
	}

	var (
		runCtx context.Context
		cancel context.CancelFunc
	)

	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(browserCtx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(browserCtx)
	}

	stop := context.AfterFunc(ctx, cancel)

	return runCtx, func() {
		stop()
		cancel()
	}, nil
}

// idleWatcher signals once the document started by a navigation reaches
// network idle. Events are keyed by frame and loader, so iframes and the
// previous document never count. Idle events can arrive before expect is
// called and are remembered until then.
type idleWatcher struct {
	mu    sync.Mutex
	seen  map[loadKey]bool
	want  loadKey
	armed bool
	once  sync.Once
	idle  chan struct{}
}

type loadKey struct {
	frame  cdp.FrameID
	loader cdp.LoaderID
}

func newIdleWatcher() *idleWatcher {
	return &idleWatcher{
		seen: make(map[loadKey]bool),
		idle: make(chan struct{}),
	}
}

// expect arms the watcher for the main frame document of one navigation.
func (w *idleWatcher) expect(frame cdp.FrameID, loader cdp.LoaderID) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.want = loadKey{frame: frame, loader: loader}
	w.armed = true

	if w.seen[w.want] {
		w.signal()
	}
}

func (w *idleWatcher) handle(ev any) {
	e, ok := ev.(*page.EventLifecycleEvent)
	if !ok || e.Name != "networkIdle" {
		return
	}

	key := loadKey{frame: e.FrameID, loader: e.LoaderID}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.seen[key] = true

	if w.armed && key == w.want {
		w.signal()
	}
}

func (w *idleWatcher) signal() {
	w.once.Do(func() { close(w.idle) })
}
