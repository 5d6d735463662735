package browser

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// ErrChromeNotFound is returned when no Chrome or Chromium executable is found.
var ErrChromeNotFound = errors.New("chrome executable not found")

// executableNames mirrors the names chromedp tries when no path is configured.
var executableNames = []string{
	"headless_shell",
	"headless-shell",
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
	"google-chrome-beta",
	"google-chrome-unstable",
}

var platformPaths = map[string][]string{
	"darwin": {
		"/Applications/Chromium.app/Contents/MacOS/Chromium",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	},
	"windows": {
		`C:\Program Files\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
	},
}

// FindExecutable resolves the browser binary. A configured path must exist;
// otherwise PATH and well-known install locations are searched.
func FindExecutable(configured string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrChromeNotFound, configured, err)
		}

		return configured, nil
	}

	for _, name := range executableNames {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}

	for _, path := range platformPaths[runtime.GOOS] {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", ErrChromeNotFound
}
