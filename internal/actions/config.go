package actions

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ethpandaops/layoutcheck/internal/config"
	"github.com/ethpandaops/layoutcheck/internal/validation"
)

// ErrConfigExists is returned when init-config would overwrite a file.
var ErrConfigExists = errors.New("config file already exists")

// LoadCheckConfig resolves the check configuration: defaults, then values
// derived from the environment, then the YAML file when one is given.
func LoadCheckConfig(app *config.AppConfig, path string) (*validation.Config, error) {
	base := validation.DefaultConfig()
	base.TargetURL = app.TargetURL()
	base.OutputDir = app.OutputDir

	if path == "" {
		path = app.ConfigFile
	}

	if path == "" {
		if _, err := os.Stat(config.DefaultConfigFile); err == nil {
			path = config.DefaultConfigFile
		}
	}

	if path == "" {
		return base, base.Validate()
	}

	cfg, err := validation.MergeConfigFile(path, base)
	if err != nil {
		return nil, fmt.Errorf("failed to load check config: %w", err)
	}

	return cfg, nil
}

// ShowConfig prints the environment configuration and the effective check configuration.
func ShowConfig(out io.Writer, configPath string) error {
	app, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	checks, err := LoadCheckConfig(app, configPath)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(checks)
	if err != nil {
		return fmt.Errorf("marshaling check config: %w", err)
	}

	fmt.Fprintln(out, app.String())
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Check Configuration:")
	fmt.Fprintln(out, "====================")
	fmt.Fprint(out, string(data))

	return nil
}

// Prompter fills in a check configuration interactively.
type Prompter interface {
	PromptCheckConfig(cfg *validation.Config) error
	Confirm(message string) bool
}

// InitConfigOptions controls InitConfig.
type InitConfigOptions struct {
	Path  string
	Force bool
	// Prompter is nil when defaults should be written without asking.
	Prompter Prompter
}

// InitConfig writes a check configuration file, asking before overwriting.
func InitConfig(out io.Writer, opts InitConfigOptions) error {
	if opts.Path == "" {
		opts.Path = config.DefaultConfigFile
	}

	_, statErr := os.Stat(opts.Path)
	exists := statErr == nil

	if exists && !opts.Force {
		if opts.Prompter == nil || !opts.Prompter.Confirm(fmt.Sprintf("%s already exists. Overwrite?", opts.Path)) {
			return fmt.Errorf("%w: %s (use --force to overwrite)", ErrConfigExists, opts.Path)
		}
	}

	cfg := validation.DefaultConfig()

	if opts.Prompter != nil {
		// Prompts start from the file being replaced when it still loads.
		if exists {
			if current, err := validation.LoadConfigFile(opts.Path); err == nil {
				cfg = current
			} else {
				fmt.Fprintf(out, "⚠️  Ignoring existing %s: %v\n", opts.Path, err)
			}
		}

		if err := opts.Prompter.PromptCheckConfig(cfg); err != nil {
			return fmt.Errorf("prompting for config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := validation.SaveConfigFile(opts.Path, cfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Fprintf(out, "✅ Wrote %s\n", opts.Path)

	return nil
}
