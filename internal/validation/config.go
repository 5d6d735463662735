package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ethpandaops/layoutcheck/internal/browser"
	"github.com/ethpandaops/layoutcheck/internal/validation/check"
	"github.com/ethpandaops/layoutcheck/internal/validation/report"
)

// Config holds the parameters of one validation run.
type Config struct {
	TargetURL         string        `yaml:"targetUrl"`
	CardSelector      string        `yaml:"cardSelector"`
	SummarySelector   string        `yaml:"summarySelector"`
	ReadMoreSelector  string        `yaml:"readMoreSelector"`
	MarkerClass       string        `yaml:"markerClass"`
	HeightTolerance   float64       `yaml:"heightTolerance"`
	OutputDir         string        `yaml:"outputDir"`
	StartupTimeout    time.Duration `yaml:"startupTimeout"`
	NavigationTimeout time.Duration `yaml:"navigationTimeout"`
	ProbeInterval     time.Duration `yaml:"probeInterval"`
	ViewportWidth     int           `yaml:"viewportWidth"`
	ViewportHeight    int           `yaml:"viewportHeight"`
}

// DefaultConfig returns the configuration matching the summary card layout.
func DefaultConfig() *Config {
	return &Config{
		TargetURL:         "http://localhost:1313/test-summaries/",
		CardSelector:      ".ui.card",
		SummarySelector:   ".card-summary-content",
		ReadMoreSelector:  `a[href*="test-summaries"]`,
		MarkerClass:       "card-summary-content",
		HeightTolerance:   check.DefaultHeightTolerance,
		OutputDir:         "test-results",
		StartupTimeout:    30 * time.Second,
		NavigationTimeout: 30 * time.Second,
		ProbeInterval:     250 * time.Millisecond,
		ViewportWidth:     1280,
		ViewportHeight:    720,
	}
}

// Selectors returns the element selectors handed to the browser.
func (c *Config) Selectors() browser.Selectors {
	return browser.Selectors{
		Card:        c.CardSelector,
		Summary:     c.SummarySelector,
		ReadMore:    c.ReadMoreSelector,
		MarkerClass: c.MarkerClass,
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var problems []string

	if u, err := url.Parse(c.TargetURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		problems = append(problems, fmt.Sprintf("targetUrl %q must be an absolute http(s) URL", c.TargetURL))
	}

	for _, sel := range []struct{ name, value string }{
		{"cardSelector", c.CardSelector},
		{"summarySelector", c.SummarySelector},
		{"readMoreSelector", c.ReadMoreSelector},
	} {
		if strings.TrimSpace(sel.value) == "" {
			problems = append(problems, sel.name+" must not be empty")
		}
	}

	if c.MarkerClass == "" || strings.ContainsAny(c.MarkerClass, " \t\n.") {
		problems = append(problems, fmt.Sprintf("markerClass %q must be a single class name", c.MarkerClass))
	}

	if c.HeightTolerance <= 0 {
		problems = append(problems, "heightTolerance must be positive")
	}

	if c.OutputDir == "" {
		problems = append(problems, "outputDir must not be empty")
	}

	if c.StartupTimeout <= 0 || c.NavigationTimeout <= 0 || c.ProbeInterval <= 0 {
		problems = append(problems, "startupTimeout, navigationTimeout and probeInterval must be positive")
	}

	if c.ViewportWidth <= 0 || c.ViewportHeight <= 0 {
		problems = append(problems, "viewport dimensions must be positive")
	}

	if len(problems) == 0 {
		return nil
	}

	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
}

// LoadConfigFile reads a YAML check configuration and merges it over the
// defaults. Unknown keys are rejected.
func LoadConfigFile(path string) (*Config, error) {
	return MergeConfigFile(path, DefaultConfig())
}

// MergeConfigFile reads a YAML check configuration and merges it over a copy
// of base. Keys absent from the file keep base's values.
func MergeConfigFile(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	merged := *base
	cfg := &merged

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: parsing %s: %w", ErrInvalidConfig, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfigFile writes cfg as YAML to path.
func SaveConfigFile(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return report.WriteFileAtomic(path, data)
}
