// Package config loads the MCP server configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the server configuration. Values resolve in order: built-in
// defaults, then the optional YAML file, then environment variables.
type Config struct {
	// TestmoURL is the base URL of the Testmo instance.
	TestmoURL string `yaml:"testmo_url"`

	// APIKey authenticates against the Testmo API. Prefer the
	// TESTMO_API_KEY environment variable over storing it in the file.
	APIKey string `yaml:"api_key"`

	// Timeout bounds each HTTP request.
	Timeout time.Duration `yaml:"timeout"`

	// PageDelay spaces consecutive requests during auto-pagination and
	// batch writes.
	PageDelay time.Duration `yaml:"page_delay"`

	// LogLevel is the minimum log level written to stderr.
	LogLevel string `yaml:"log_level"`

	// MetricsAddr serves Prometheus metrics when non-empty (e.g. ":9090").
	MetricsAddr string `yaml:"metrics_addr"`

	// FieldMappings points to a YAML file overriding the built-in field
	// value mappings.
	FieldMappings string `yaml:"field_mappings"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Timeout:   30 * time.Second,
		PageDelay: 500 * time.Millisecond,
		LogLevel:  "info",
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, and the environment. An empty path skips the file layer.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv overlays environment variables on the configuration.
func applyEnv(cfg *Config) {
	if v := os.Getenv("TESTMO_URL"); v != "" {
		cfg.TestmoURL = v
	}
	if v := os.Getenv("TESTMO_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("TESTMO_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// Validate checks the configuration for completeness, collecting every
// failure into one error.
func (c *Config) Validate() error {
	var errors []string

	if c.TestmoURL == "" {
		errors = append(errors, "TESTMO_URL environment variable not set: set it to your Testmo instance URL (e.g., https://your-instance.testmo.net)")
	}
	if c.APIKey == "" {
		errors = append(errors, "TESTMO_API_KEY environment variable not set: get your API key from Testmo: Settings > API Keys")
	}
	if c.Timeout < 0 {
		errors = append(errors, "timeout must not be negative")
	}
	if c.PageDelay < 0 {
		errors = append(errors, "page_delay must not be negative")
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}
	return nil
}
