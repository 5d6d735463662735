package actions

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpandaops/layoutcheck/internal/config"
	"github.com/ethpandaops/layoutcheck/internal/validation"
)

type fakePrompter struct {
	confirm   bool
	tolerance float64
	err       error
	asked     []string
	offered   validation.Config
}

func (f *fakePrompter) PromptCheckConfig(cfg *validation.Config) error {
	f.asked = append(f.asked, "config")
	f.offered = *cfg
	if f.err != nil {
		return f.err
	}

	cfg.HeightTolerance = f.tolerance

	return nil
}

func (f *fakePrompter) Confirm(message string) bool {
	f.asked = append(f.asked, message)
	return f.confirm
}

func testApp() *config.AppConfig {
	return &config.AppConfig{
		Renderer:   "hugo",
		HugoBinary: "hugo",
		Host:       "127.0.0.1",
		Port:       8080,
		OutputDir:  "out",
		Headless:   true,
	}
}

func TestLoadCheckConfig_DerivesFromEnvironment(t *testing.T) {
	cfg, err := LoadCheckConfig(testApp(), "")
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8080/test-summaries/", cfg.TargetURL)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, validation.DefaultConfig().CardSelector, cfg.CardSelector)
}

func TestLoadCheckConfig_IPv6Host(t *testing.T) {
	app := testApp()
	app.Host = "::1"

	cfg, err := LoadCheckConfig(app, "")
	require.NoError(t, err)
	assert.Equal(t, "http://[::1]:8080/test-summaries/", cfg.TargetURL)
}

func TestLoadCheckConfig_FileOverridesEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checks.yaml")
	require.NoError(t, os.WriteFile(path, []byte("targetUrl: http://docs.local/test-summaries/\nheightTolerance: 3\n"), 0o600))

	cfg, err := LoadCheckConfig(testApp(), path)
	require.NoError(t, err)

	assert.Equal(t, "http://docs.local/test-summaries/", cfg.TargetURL)
	assert.Equal(t, 3.0, cfg.HeightTolerance)
	assert.Equal(t, "out", cfg.OutputDir)
}

func TestLoadCheckConfig_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checks.yaml")
	require.NoError(t, os.WriteFile(path, []byte("heightTolerance: -2\n"), 0o600))

	_, err := LoadCheckConfig(testApp(), path)
	require.ErrorIs(t, err, validation.ErrInvalidConfig)
}

func TestInitConfig_WritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layoutcheck.yaml")
	var out bytes.Buffer

	require.NoError(t, InitConfig(&out, InitConfigOptions{Path: path}))
	assert.Contains(t, out.String(), path)

	cfg, err := validation.LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, validation.DefaultConfig(), cfg)
}

func TestInitConfig_RefusesOverwriteWithoutConsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layoutcheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte("heightTolerance: 2\n"), 0o600))

	err := InitConfig(&bytes.Buffer{}, InitConfigOptions{Path: path})
	require.ErrorIs(t, err, ErrConfigExists)

	declined := &fakePrompter{confirm: false}
	err = InitConfig(&bytes.Buffer{}, InitConfigOptions{Path: path, Prompter: declined})
	require.ErrorIs(t, err, ErrConfigExists)
	assert.NotContains(t, declined.asked, "config")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "heightTolerance: 2\n", string(data))
}

func TestInitConfig_ForceAndPrompted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layoutcheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte("heightTolerance: 2\n"), 0o600))

	require.NoError(t, InitConfig(&bytes.Buffer{}, InitConfigOptions{Path: path, Force: true}))

	prompter := &fakePrompter{confirm: true, tolerance: 7}
	require.NoError(t, InitConfig(&bytes.Buffer{}, InitConfigOptions{Path: path, Prompter: prompter}))

	cfg, err := validation.LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, 7.0, cfg.HeightTolerance)
}

func TestInitConfig_PromptsStartFromExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layoutcheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cardSelector: .card\nheightTolerance: 4\n"), 0o600))

	prompter := &fakePrompter{confirm: true, tolerance: 6}
	require.NoError(t, InitConfig(&bytes.Buffer{}, InitConfigOptions{Path: path, Prompter: prompter}))

	assert.Equal(t, ".card", prompter.offered.CardSelector)
	assert.Equal(t, 4.0, prompter.offered.HeightTolerance)

	cfg, err := validation.LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, ".card", cfg.CardSelector)
	assert.Equal(t, 6.0, cfg.HeightTolerance)
}

func TestInitConfig_UnreadableExistingFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layoutcheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bogusKey: 1\n"), 0o600))

	var out bytes.Buffer
	prompter := &fakePrompter{confirm: true, tolerance: 5}
	require.NoError(t, InitConfig(&out, InitConfigOptions{Path: path, Prompter: prompter}))

	assert.Contains(t, out.String(), "Ignoring existing")
	assert.Equal(t, validation.DefaultConfig().CardSelector, prompter.offered.CardSelector)
}

func TestInitConfig_PromptError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layoutcheck.yaml")

	err := InitConfig(&bytes.Buffer{}, InitConfigOptions{Path: path, Prompter: &fakePrompter{err: errors.New("interrupt")}})
	require.Error(t, err)
	assert.NoFileExists(t, path)
}

func TestValidate_RejectsUnknownRenderer(t *testing.T) {
	app := testApp()
	app.Renderer = "jekyll"

	_, err := Validate(context.Background(), logrus.New(), ValidateOptions{
		App:    app,
		Checks: validation.DefaultConfig(),
		Out:    &bytes.Buffer{},
	})
	require.ErrorIs(t, err, validation.ErrInvalidConfig)
}

func TestDoctor_ReportsFailures(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})

	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	app := testApp()
	app.Renderer = "static"
	app.SiteDir = filepath.Join(t.TempDir(), "missing-public")
	app.OutputDir = filepath.Join(blocker, "out")
	app.Port = 0

	var out bytes.Buffer
	err := Doctor(context.Background(), log, app, app.TargetURL(), &out)

	require.ErrorIs(t, err, ErrPrerequisites)
	assert.Contains(t, out.String(), "Site directory")
	assert.Contains(t, out.String(), "Output directory")
}
