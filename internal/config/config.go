// Package config provides centralized configuration for the editor test
// toolkit. It loads configuration from CLI flags and environment variables,
// validates required fields, and provides sensible defaults.
//
// CLI flags control the run (--addr, --base-url, --features, --headed).
// Environment variables provide paths and secrets.
package config

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultReadyTimeout is how long editor resolution waits for an instance
// to report ready before failing. Ten seconds covers slow widget loads;
// READY_TIMEOUT_MS overrides it for fixture server tests.
const DefaultReadyTimeout = 10 * time.Second

// Config holds all application configuration.
type Config struct {
	// Server settings
	ListenAddr   string
	BaseURL      string
	TemplatesDir string

	// Settings store
	DatabasePath string // Path for the widget settings database file
	SettingsKey  string // Optional 64 hex characters (32 bytes) SQLCipher key

	// Editor adapter
	ReadyTimeout time.Duration // How long to wait for editor readiness

	// Step runner
	FeaturesDir string // Directory of .feature files for the runner
	Headless    bool   // Run the browser headless (default true)
}

// ValidationError represents a configuration validation error with multiple issues.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Flags holds parsed CLI flag values. Call ParseFlags before LoadConfig.
type Flags struct {
	Addr     string
	BaseURL  string
	Features string
	Headed   bool
}

// ParseFlags registers and parses the toolkit's CLI flags.
func ParseFlags() Flags {
	var f Flags
	flag.StringVar(&f.Addr, "addr", "", "Listen address (default :8080, overrides LISTEN_ADDR env var)")
	flag.StringVar(&f.BaseURL, "base-url", "", "Base URL of the site under test (overrides BASE_URL env var)")
	flag.StringVar(&f.Features, "features", "", "Feature file directory (default ./features, overrides FEATURES_DIR env var)")
	flag.BoolVar(&f.Headed, "headed", false, "Run the browser with a visible window")
	flag.Parse()
	return f
}

// LoadConfig loads configuration from environment variables and CLI flag values.
func LoadConfig(flags Flags) (*Config, error) {
	cfg := &Config{}

	cfg.ListenAddr = getEnvOrDefault("LISTEN_ADDR", ":8080")
	if flags.Addr != "" {
		cfg.ListenAddr = flags.Addr
	}
	cfg.BaseURL = strings.TrimSpace(os.Getenv("BASE_URL"))
	if flags.BaseURL != "" {
		cfg.BaseURL = flags.BaseURL
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost" + cfg.ListenAddr
	}
	cfg.TemplatesDir = getEnvOrDefault("TEMPLATES_DIR", "./web/templates")

	cfg.DatabasePath = getEnvOrDefault("DATABASE_PATH", "./data/settings.db")
	cfg.SettingsKey = strings.TrimSpace(os.Getenv("SETTINGS_KEY"))

	cfg.ReadyTimeout = DefaultReadyTimeout
	if raw := strings.TrimSpace(os.Getenv("READY_TIMEOUT_MS")); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil || ms <= 0 {
			return nil, &ValidationError{Errors: []string{
				fmt.Sprintf("READY_TIMEOUT_MS must be a positive integer, got %q", raw),
			}}
		}
		cfg.ReadyTimeout = time.Duration(ms) * time.Millisecond
	}

	cfg.FeaturesDir = getEnvOrDefault("FEATURES_DIR", "./features")
	if flags.Features != "" {
		cfg.FeaturesDir = flags.Features
	}
	cfg.Headless = !flags.Headed
	if raw := strings.TrimSpace(os.Getenv("HEADLESS")); raw != "" {
		cfg.Headless = raw != "false" && raw != "0"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var issues []string

	if c.ListenAddr == "" {
		issues = append(issues, "listen address must not be empty")
	}
	if c.SettingsKey != "" {
		decoded, err := hex.DecodeString(c.SettingsKey)
		if err != nil || len(decoded) != 32 {
			issues = append(issues, "SETTINGS_KEY must be 64 hex characters (32 bytes)")
		}
	}
	if c.ReadyTimeout <= 0 {
		issues = append(issues, "ready timeout must be positive")
	}

	if len(issues) > 0 {
		return &ValidationError{Errors: issues}
	}
	return nil
}

func getEnvOrDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}
