package ratelimit

import (
	"strconv"
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	IdleTTL         time.Duration // buckets unused this long are dropped
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// DefaultConfig returns an enabled configuration with the default endpoint limits.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    600,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Whitelist:       map[string]bool{},
		Blacklist:       map[string]bool{},
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// LoadConfig builds a configuration from RATE_LIMIT_* variables read through lookup.
func LoadConfig(lookup func(string) (string, bool)) *Config {
	env := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	cfg := DefaultConfig()
	if v, err := strconv.ParseBool(env("RATE_LIMIT_ENABLED")); err == nil {
		cfg.Enabled = v
	}
	if v, err := strconv.Atoi(env("RATE_LIMIT_DEFAULT_LIMIT")); err == nil && v > 0 {
		cfg.DefaultLimit = v
	}
	if v, err := time.ParseDuration(env("RATE_LIMIT_DEFAULT_WINDOW")); err == nil && v > 0 {
		cfg.DefaultWindow = v
	}
	if v, err := time.ParseDuration(env("RATE_LIMIT_CLEANUP_INTERVAL")); err == nil && v > 0 {
		cfg.CleanupInterval = v
	}
	cfg.Whitelist = parseIPList(env("RATE_LIMIT_WHITELIST"))
	cfg.Blacklist = parseIPList(env("RATE_LIMIT_BLACKLIST"))
	return cfg
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
// Endpoints that reach news sources or LLM providers get the strictest limits.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Provider-bound
		{Path: "/articles/", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/highlights", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/social", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},

		// Source-bound
		{Path: "/news", Method: "POST", Limit: 60, Window: time.Hour, Burst: 10},
		{Path: "/news/stream", Method: "POST", Limit: 60, Window: time.Hour, Burst: 10},
		{Path: "/providers/health", Method: "GET", Limit: 30, Window: time.Minute, Burst: 5},

		// Writes
		{Path: "/companies/resolve", Method: "POST", Limit: 300, Window: time.Minute, Burst: 30},
	}
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
