package config

const (
	// DefaultRenderer is the renderer mode used when LAYOUTCHECK_RENDERER is unset.
	DefaultRenderer = "hugo"
	// DefaultHugoBinary is the generator executable looked up on PATH.
	DefaultHugoBinary = "hugo"
	// DefaultHost is the interface the renderer binds to.
	DefaultHost = "localhost"
	// DefaultPort is the generator's development server port.
	DefaultPort = 1313
	// DefaultSiteDir is the site source (hugo) or build output (static) directory.
	DefaultSiteDir = "."
	// DefaultOutputDir receives the results file and screenshots.
	DefaultOutputDir = "test-results"
	// DefaultPagePath is the page holding the summary cards under test.
	DefaultPagePath = "/test-summaries/"
	// DefaultConfigFile is the check configuration written by init-config.
	DefaultConfigFile = "layoutcheck.yaml"
)
