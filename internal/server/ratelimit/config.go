package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Rule is a per-endpoint limit. Path matches by prefix.
type Rule struct {
	Path   string
	Method string
	Limit  int
	Window time.Duration
	Burst  int
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Rules           []Rule
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	if !getEnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Rules:           defaultRules(),
	}
}

// defaultRules tiers the audit API: a run occupies an extraction job and an
// LLM session, so starting runs is far more limited than reading results.
func defaultRules() []Rule {
	return []Rule{
		{Path: "/audits/stream", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},
		{Path: "/audits", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},
		{Path: "/auth/token", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/rules/search", Method: "GET", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/health", Method: "GET", Limit: 0}, // unlimited
	}
}

// match returns the first rule whose path prefix and method fit, or a
// default rule built from the global limit.
func (c *Config) match(path, method string) Rule {
	for _, rule := range c.Rules {
		if rule.Method == method && strings.HasPrefix(path, rule.Path) {
			return rule
		}
	}
	return Rule{Path: "", Limit: c.DefaultLimit, Window: c.DefaultWindow, Burst: c.DefaultLimit}
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
