// Package config handles configuration loading and management
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig holds the environment-level configuration loaded from environment variables.
type AppConfig struct {
	Renderer   string
	HugoBinary string
	Host       string
	Port       int
	SiteDir    string
	ChromePath string
	OutputDir  string
	ConfigFile string
	Headless   bool
	LogLevel   string
}

// Load reads configuration from environment variables and .env file.
func Load() (*AppConfig, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// It's okay if the file doesn't exist
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	return FromEnv()
}

// FromEnv builds the configuration from the current process environment only.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{
		Renderer:   strings.ToLower(getEnv("LAYOUTCHECK_RENDERER", DefaultRenderer)),
		HugoBinary: getEnv("LAYOUTCHECK_HUGO_BIN", DefaultHugoBinary),
		Host:       getEnv("LAYOUTCHECK_HOST", DefaultHost),
		SiteDir:    getEnv("LAYOUTCHECK_SITE_DIR", DefaultSiteDir),
		ChromePath: getEnv("LAYOUTCHECK_CHROME_PATH", ""),
		OutputDir:  getEnv("LAYOUTCHECK_OUTPUT_DIR", DefaultOutputDir),
		ConfigFile: getEnv("LAYOUTCHECK_CONFIG", ""),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
	}

	port, err := strconv.Atoi(getEnv("LAYOUTCHECK_PORT", strconv.Itoa(DefaultPort)))
	if err != nil {
		return nil, fmt.Errorf("invalid LAYOUTCHECK_PORT: %w", err)
	}

	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid LAYOUTCHECK_PORT: %d is out of range", port)
	}
	cfg.Port = port

	headless, err := strconv.ParseBool(getEnv("LAYOUTCHECK_HEADLESS", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid LAYOUTCHECK_HEADLESS: %w", err)
	}
	cfg.Headless = headless

	return cfg, nil
}

// TargetURL returns the page URL the renderer serves for the summary cards.
func (c *AppConfig) TargetURL() string {
	return "http://" + net.JoinHostPort(c.Host, strconv.Itoa(c.Port)) + DefaultPagePath
}

func (c *AppConfig) String() string {
	chromeDisplay := c.ChromePath
	if chromeDisplay == "" {
		chromeDisplay = "(auto-detect)"
	}

	configDisplay := c.ConfigFile
	if configDisplay == "" {
		configDisplay = "(defaults)"
	}

	return fmt.Sprintf(`Current Configuration:
======================
Renderer:      %s
Hugo Binary:   %s
Host:          %s
Port:          %d
Site Dir:      %s
Target URL:    %s
Chrome Path:   %s
Headless:      %t
Output Dir:    %s
Check Config:  %s
Log Level:     %s`,
		c.Renderer,
		c.HugoBinary,
		c.Host,
		c.Port,
		c.SiteDir,
		c.TargetURL(),
		chromeDisplay,
		c.Headless,
		c.OutputDir,
		configDisplay,
		c.LogLevel,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
