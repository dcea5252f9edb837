package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all environment-based configuration for folio.
type Config struct {
	// Content origin: an http(s) base URL or a local directory holding
	// posts/index.json, posts/<slug>.md and reading-list.json.
	Content string `env:"FOLIO_CONTENT"`

	// Add a t=<unix millis> query parameter to index and post fetches.
	CacheBust bool `env:"FOLIO_CACHE_BUST" envDefault:"true"`

	// Format post and list dates as "JANUARY 5, 2024".
	LongDates bool `env:"FOLIO_LONG_DATES" envDefault:"true"`

	// Sort the writings list newest first.
	SortPosts bool `env:"FOLIO_SORT_POSTS" envDefault:"true"`

	// Number of posts on the home page.
	LatestLimit int `env:"FOLIO_LATEST_LIMIT" envDefault:"3"`

	// Chroma style for code blocks.
	CodeStyle string `env:"FOLIO_CODE_STYLE" envDefault:"nord"`

	// Math typesetting: mathml, client or none.
	MathMode string `env:"FOLIO_MATH_MODE" envDefault:"mathml"`

	// Directory of page templates overriding the built-in theme.
	PagesDir string `env:"FOLIO_PAGES_DIR"`

	// Site metadata file. A missing file yields the defaults.
	SiteFile string `env:"FOLIO_SITE_FILE" envDefault:"site.yaml"`

	// Static export output directory.
	ExportDir string `env:"FOLIO_EXPORT_DIR" envDefault:"public"`

	// Directory for the export state database. Defaults to ~/.folio.
	StateDir string `env:"FOLIO_STATE_DIR"`

	// HTTP server settings.
	ListenAddr     string `env:"LISTEN_ADDR" envDefault:":8080"`
	EnableMCP      bool   `env:"ENABLE_MCP" envDefault:"false"`
	EnableMetrics  bool   `env:"ENABLE_METRICS" envDefault:"false"`
	EnableLiveLoad bool   `env:"ENABLE_LIVE_RELOAD" envDefault:"false"`

	// Environment controls log format
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

var mathModes = []string{"mathml", "client", "none"}

// Load reads configuration from environment variables.
// It first attempts to load a .env file if present, then parses env vars.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.StateDir == "" {
		dir, err := DefaultStateDir()
		if err != nil {
			return nil, err
		}

		cfg.StateDir = dir
	}

	return cfg, nil
}

// Validate checks the settings every command needs. It runs after
// command-line overrides have been applied.
func (c *Config) Validate() error {
	if c.Content == "" {
		return fmt.Errorf("FOLIO_CONTENT is required")
	}

	if c.LatestLimit < 1 {
		return fmt.Errorf("FOLIO_LATEST_LIMIT must be at least 1, got %d", c.LatestLimit)
	}

	mode := strings.ToLower(c.MathMode)
	valid := false
	for _, m := range mathModes {
		if mode == m {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("FOLIO_MATH_MODE must be one of %s, got %q", strings.Join(mathModes, ", "), c.MathMode)
	}

	if c.PagesDir != "" {
		info, err := os.Stat(c.PagesDir)
		if err != nil {
			return fmt.Errorf("FOLIO_PAGES_DIR: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("FOLIO_PAGES_DIR %q is not a directory", c.PagesDir)
		}
	}

	return nil
}

// IsLocalContent reports whether the content origin is a directory
// rather than a URL.
func (c *Config) IsLocalContent() bool {
	return !strings.HasPrefix(c.Content, "http://") && !strings.HasPrefix(c.Content, "https://")
}

// DefaultStateDir returns ~/.folio.
func DefaultStateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}

	return filepath.Join(home, ".folio"), nil
}

// IsProduction returns true when the environment is set to production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
