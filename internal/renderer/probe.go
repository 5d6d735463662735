package renderer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// WaitReady polls url until it returns any HTTP response, the timeout elapses,
// ctx is cancelled, or exited is closed. A nil exited channel is never ready.
// Non-200 responses count as ready since the server is accepting requests;
// they are logged so a missing page is visible before navigation.
func WaitReady(
	ctx context.Context,
	log logrus.FieldLogger,
	url string,
	timeout, interval time.Duration,
	exited <-chan struct{},
) error {
	log = log.WithField("url", url)
	log.Debug("waiting for renderer to accept requests")

	client := &http.Client{Timeout: interval + time.Second}
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		status, err := probe(ctx, client, url)
		if err == nil {
			entry := log.WithFields(logrus.Fields{"status": status, "attempts": attempt})
			if status != http.StatusOK {
				entry.Warn("renderer is up but target returned a non-200 status")
			} else {
				entry.Debug("renderer is ready")
			}

			return nil
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("%w after %s: %w", ErrStartupTimeout, timeout, err)
		}

		log.WithError(err).WithField("attempt", attempt).Debug("renderer not ready yet, retrying...")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-exited:
			return ErrProcessExited
		case <-ticker.C:
		}
	}
}

func probe(ctx context.Context, client *http.Client, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("building probe request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}
