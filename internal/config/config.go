package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by Load. The API token is deliberately absent.
const (
	EnvBaseURL            = "RDR_BASE_URL"
	EnvLogLevel           = "RDR_LOG_LEVEL"
	EnvLogFormat          = "RDR_LOG_FORMAT"
	EnvReceiptsURI        = "RDR_RECEIPTS_URI"
	EnvReceiptsDatabase   = "RDR_RECEIPTS_DB"
	EnvReceiptsCollection = "RDR_RECEIPTS_COLLECTION"
)

const (
	DefaultBaseURL            = "https://api.figsh.com/v2"
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "text"
	DefaultReceiptsDatabase   = "rdrupload"
	DefaultReceiptsCollection = "receipts"
)

// Config holds settings for a run.
type Config struct {
	BaseURL   string
	LogLevel  string
	LogFormat string
	Receipts  ReceiptsConfig
}

// ReceiptsConfig points at the optional MongoDB receipt store.
// An empty URI disables it.
type ReceiptsConfig struct {
	URI        string
	Database   string
	Collection string
}

// Enabled reports whether receipts should be recorded.
func (r ReceiptsConfig) Enabled() bool {
	return r.URI != ""
}

// LoadDotEnv loads a .env file if one exists. Variables already set win.
func LoadDotEnv(filenames ...string) error {
	err := godotenv.Load(filenames...)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// Load reads configuration from the environment and applies defaults.
func Load() (*Config, error) {
	cfg := &Config{
		BaseURL:   getenv(EnvBaseURL, DefaultBaseURL),
		LogLevel:  getenv(EnvLogLevel, DefaultLogLevel),
		LogFormat: getenv(EnvLogFormat, DefaultLogFormat),
		Receipts: ReceiptsConfig{
			URI:        os.Getenv(EnvReceiptsURI),
			Database:   getenv(EnvReceiptsDatabase, DefaultReceiptsDatabase),
			Collection: getenv(EnvReceiptsCollection, DefaultReceiptsCollection),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		errs = append(errs, fmt.Sprintf("%s (%q) must be an absolute http(s) URL", EnvBaseURL, c.BaseURL))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("%s (%q) must be one of: debug, info, warn, error", EnvLogLevel, c.LogLevel))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.LogFormat)] {
		errs = append(errs, fmt.Sprintf("%s (%q) must be one of: text, json", EnvLogFormat, c.LogFormat))
	}

	if c.Receipts.Enabled() {
		if c.Receipts.Database == "" {
			errs = append(errs, EnvReceiptsDatabase+" must not be empty when receipts are enabled")
		}
		if c.Receipts.Collection == "" {
			errs = append(errs, EnvReceiptsCollection+" must not be empty when receipts are enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// String returns a representation safe for logging.
func (c *Config) String() string {
	receipts := "disabled"
	if c.Receipts.Enabled() {
		receipts = fmt.Sprintf("%s.%s", c.Receipts.Database, c.Receipts.Collection)
	}
	return fmt.Sprintf("Config{BaseURL: %q, Log: %s/%s, Receipts: %s}",
		c.BaseURL, c.LogLevel, c.LogFormat, receipts)
}
