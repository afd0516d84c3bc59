// Package config provides configuration management for gemini-suite.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment keys read by Load.
const (
	KeyAPIKey    = "GEMINI_API_KEY"
	KeyModel     = "GEMINI_MODEL"
	KeyBaseURL   = "GEMINI_BASE_URL"
	KeyTimeout   = "GEMINI_TIMEOUT"
	KeyDataDir   = "GEMINI_SUITE_DATA_DIR"
	KeyOutputDir = "GEMINI_SUITE_OUTPUT_DIR"
	KeyTemplates = "GEMINI_SUITE_TEMPLATES"
	KeyJournal   = "GEMINI_SUITE_JOURNAL"
	KeyLogLevel  = "GEMINI_SUITE_LOG_LEVEL"
)

const (
	defaultModel   = "gemini-2.0-flash"
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultTimeout = 2 * time.Minute
)

// Config holds all configuration for a gemini-suite run.
type Config struct {
	// APIKey is the Gemini API key. It may be empty; the shell then asks for it.
	APIKey string

	// Model is the Gemini model name (e.g., "gemini-2.0-flash").
	Model string

	// BaseURL is the API root the model path is appended to.
	BaseURL string

	// Timeout bounds a single request round trip.
	Timeout time.Duration

	// DataDir holds the config file, the journal and the templates file.
	DataDir string

	// OutputDir is where result files (summary.txt, ...) are written.
	// Default: the working directory.
	OutputDir string

	// TemplatesPath is an optional YAML file overriding mode templates.
	TemplatesPath string

	// JournalEnabled turns on the SQLite exchange journal.
	JournalEnabled bool

	// JournalPath is the full path to the journal database.
	JournalPath string

	// LogLevel is the zerolog level name for diagnostics on stderr.
	LogLevel string
}

// Load creates a Config from the environment and config files.
// Values are resolved in order: environment variable > ./.env > config file > default.
func Load() (*Config, error) {
	if err := loadEnvFile(".env"); err != nil {
		return nil, err
	}
	if err := loadEnvFile(FilePath()); err != nil {
		return nil, err
	}

	dataDir := DataDir()
	cfg := &Config{
		APIKey:         strings.TrimSpace(os.Getenv(KeyAPIKey)),
		Model:          envOr(KeyModel, defaultModel),
		BaseURL:        envOr(KeyBaseURL, defaultBaseURL),
		Timeout:        envOrDuration(KeyTimeout, defaultTimeout),
		DataDir:        dataDir,
		OutputDir:      envOr(KeyOutputDir, "."),
		TemplatesPath:  envOr(KeyTemplates, filepath.Join(dataDir, "templates.yaml")),
		JournalEnabled: envOrBool(KeyJournal, false),
		JournalPath:    filepath.Join(dataDir, "journal.db"),
		LogLevel:       envOr(KeyLogLevel, "warn"),
	}

	return cfg, nil
}

// loadEnvFile sets any values from path that are not already present in the
// environment. A missing file is not an error.
func loadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("reading %s: %w", path, err)
}

// Validate checks that the configuration can drive a session.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%s must not be empty", KeyModel)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyTimeout, c.Timeout)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", KeyBaseURL, c.BaseURL)
	}
	return nil
}

// EnsureDataDir creates DataDir if it does not exist.
func (c *Config) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	return nil
}

// DataDir returns the data directory: $GEMINI_SUITE_DATA_DIR or ~/.gemini-suite.
func DataDir() string {
	if v := os.Getenv(KeyDataDir); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gemini-suite"
	}
	return filepath.Join(home, ".gemini-suite")
}

// FilePath returns the path of the persistent config file.
func FilePath() string {
	return filepath.Join(DataDir(), "config.env")
}

func envOrDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envOrBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
