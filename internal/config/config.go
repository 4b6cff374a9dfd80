// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Default tuning values for the extraction polling loop and rule retrieval.
const (
	DefaultPollInterval    = 5 * time.Second
	DefaultPollMaxInterval = 40 * time.Second
	DefaultMaxWait         = 10 * time.Minute
	DefaultRetrievalTopK   = 8
	DefaultServerPort      = 8080
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via
// CLI flags or environment.
type Config struct {
	// Credentials and endpoints
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL

	// Extraction polling discipline
	PollIntervalSeconds    int `json:"poll_interval_seconds,omitempty"`     // initial poll interval
	PollMaxIntervalSeconds int `json:"poll_max_interval_seconds,omitempty"` // backoff cap
	MaxWaitSeconds         int `json:"max_wait_seconds,omitempty"`          // total wait bound

	// Retrieval
	RetrievalTopK int `json:"retrieval_top_k,omitempty"` // rule snippets per audit

	// Server
	Port int `json:"port,omitempty"`

	// Behavior
	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a Config from environment variables. Empty variables leave
// fields at their zero value so MergeWithDefaults can fill them.
func FromEnv() Config {
	return Config{
		APIKey:      os.Getenv("GEMINI_API_KEY"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
	}
}

// Validate checks that the configuration has valid values.
// Required-field checks happen after CLI flag merging, not here.
func (c *Config) Validate() error {
	if c.PollIntervalSeconds < 0 {
		return fmt.Errorf("config error: 'poll_interval_seconds' must be non-negative")
	}
	if c.PollMaxIntervalSeconds < 0 {
		return fmt.Errorf("config error: 'poll_max_interval_seconds' must be non-negative")
	}
	if c.MaxWaitSeconds < 0 {
		return fmt.Errorf("config error: 'max_wait_seconds' must be non-negative")
	}
	if c.RetrievalTopK < 0 {
		return fmt.Errorf("config error: 'retrieval_top_k' must be non-negative")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' out of range: %d", c.Port)
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from
// defaults. This is used to apply config-file values as defaults for CLI
// flags and environment variables.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.PollIntervalSeconds == 0 {
		result.PollIntervalSeconds = defaults.PollIntervalSeconds
	}
	if result.PollMaxIntervalSeconds == 0 {
		result.PollMaxIntervalSeconds = defaults.PollMaxIntervalSeconds
	}
	if result.MaxWaitSeconds == 0 {
		result.MaxWaitSeconds = defaults.MaxWaitSeconds
	}
	if result.RetrievalTopK == 0 {
		result.RetrievalTopK = defaults.RetrievalTopK
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if !result.Verbose {
		result.Verbose = defaults.Verbose
	}

	return result
}

// PollInterval returns the configured initial poll interval, falling back to
// the package default when unset.
func (c *Config) PollInterval() time.Duration {
	if c.PollIntervalSeconds > 0 {
		return time.Duration(c.PollIntervalSeconds) * time.Second
	}
	return DefaultPollInterval
}

// PollMaxInterval returns the configured backoff cap.
func (c *Config) PollMaxInterval() time.Duration {
	if c.PollMaxIntervalSeconds > 0 {
		return time.Duration(c.PollMaxIntervalSeconds) * time.Second
	}
	return DefaultPollMaxInterval
}

// MaxWait returns the configured bound on total extraction wait time.
func (c *Config) MaxWait() time.Duration {
	if c.MaxWaitSeconds > 0 {
		return time.Duration(c.MaxWaitSeconds) * time.Second
	}
	return DefaultMaxWait
}

// TopK returns the configured retrieval depth.
func (c *Config) TopK() int {
	if c.RetrievalTopK > 0 {
		return c.RetrievalTopK
	}
	return DefaultRetrievalTopK
}
