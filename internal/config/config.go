// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/company-pulse/internal/cache"
	"github.com/jonathan/company-pulse/internal/events"
	"github.com/jonathan/company-pulse/internal/processing"
	"github.com/jonathan/company-pulse/internal/scheduler"
)

// Config is the full application configuration. It can be loaded from a JSON
// or YAML file; environment variables override file values.
type Config struct {
	Port        int    `json:"port,omitempty" yaml:"port,omitempty"`
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"` // empty keeps data in memory
	Verbose     bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`

	Redis cache.RedisConfig `json:"redis" yaml:"redis"` // empty addr uses the in-process cache
	NATS  events.NATSConfig `json:"nats" yaml:"nats"`   // empty url disables events
	Cache CacheConfig       `json:"cache" yaml:"cache"`

	Sources    SourcesConfig       `json:"sources" yaml:"sources"`
	Providers  ProvidersConfig     `json:"providers" yaml:"providers"`
	Generation GenerationConfig    `json:"generation" yaml:"generation"`
	Processing processing.Criteria `json:"processing" yaml:"processing"`
	Watchlist  scheduler.Config    `json:"watchlist" yaml:"watchlist"`
}

// CacheConfig configures the news cache.
type CacheConfig struct {
	TTLSeconds int `json:"ttl_seconds,omitempty" yaml:"ttl_seconds,omitempty"`
}

// SourcesConfig configures the news connectors.
type SourcesConfig struct {
	NewsAPIKey     string            `json:"newsapi_key,omitempty" yaml:"newsapi_key,omitempty"`
	RSSFeeds       []string          `json:"rss_feeds,omitempty" yaml:"rss_feeds,omitempty"`
	Newsrooms      map[string]string `json:"newsrooms,omitempty" yaml:"newsrooms,omitempty"`
	UseBrowser     bool              `json:"use_browser,omitempty" yaml:"use_browser,omitempty"`
	TimeoutSeconds int               `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`
	MaxPerSource   int               `json:"max_per_source,omitempty" yaml:"max_per_source,omitempty"`
}

// ProvidersConfig holds generation provider credentials. Order lists provider
// names by priority; providers without a key are skipped.
type ProvidersConfig struct {
	Order           []string `json:"order,omitempty" yaml:"order,omitempty"`
	GeminiAPIKey    string   `json:"gemini_api_key,omitempty" yaml:"gemini_api_key,omitempty"`
	AnthropicAPIKey string   `json:"anthropic_api_key,omitempty" yaml:"anthropic_api_key,omitempty"`
	OpenAIAPIKey    string   `json:"openai_api_key,omitempty" yaml:"openai_api_key,omitempty"`
	OpenAIBaseURL   string   `json:"openai_base_url,omitempty" yaml:"openai_base_url,omitempty"`
	Tier            string   `json:"tier,omitempty" yaml:"tier,omitempty"`
}

// GenerationConfig tunes the generation orchestrator.
type GenerationConfig struct {
	HighlightThreshold   float64 `json:"highlight_threshold,omitempty" yaml:"highlight_threshold,omitempty"`
	SocialThreshold      float64 `json:"social_threshold,omitempty" yaml:"social_threshold,omitempty"`
	CallTimeoutSeconds   int     `json:"call_timeout_seconds,omitempty" yaml:"call_timeout_seconds,omitempty"`
	CooldownSeconds      int     `json:"cooldown_seconds,omitempty" yaml:"cooldown_seconds,omitempty"`
	HealthTimeoutSeconds int     `json:"health_timeout_seconds,omitempty" yaml:"health_timeout_seconds,omitempty"`
}

// Default provider order.
var DefaultProviderOrder = []string{"gemini", "anthropic", "openai"}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

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
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Load reads path when it is non-empty, applies environment overrides and
// defaults, and validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides file values with the environment variables that are set.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("DATABASE_URL", &c.DatabaseURL)
	str("REDIS_ADDR", &c.Redis.Addr)
	str("REDIS_PASSWORD", &c.Redis.Password)
	str("NATS_URL", &c.NATS.URL)
	str("NEWSAPI_KEY", &c.Sources.NewsAPIKey)
	str("GEMINI_API_KEY", &c.Providers.GeminiAPIKey)
	str("ANTHROPIC_API_KEY", &c.Providers.AnthropicAPIKey)
	str("OPENAI_API_KEY", &c.Providers.OpenAIAPIKey)
	str("OPENAI_BASE_URL", &c.Providers.OpenAIBaseURL)

	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: invalid PORT %q: %w", v, err)
		}
		c.Port = port
	}
	if v, ok := lookup("PROVIDER_ORDER"); ok && v != "" {
		c.Providers.Order = splitList(v)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ApplyDefaults fills unset values.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = int(cache.DefaultNewsTTL / time.Second)
	}
	if c.Sources.TimeoutSeconds == 0 {
		c.Sources.TimeoutSeconds = 10
	}
	if c.Sources.MaxPerSource == 0 {
		c.Sources.MaxPerSource = 50
	}
	if len(c.Providers.Order) == 0 {
		c.Providers.Order = append([]string(nil), DefaultProviderOrder...)
	}
	if c.Providers.Tier == "" {
		c.Providers.Tier = "standard"
	}
	if c.Generation.HighlightThreshold == 0 {
		c.Generation.HighlightThreshold = 60
	}
	if c.Generation.SocialThreshold == 0 {
		c.Generation.SocialThreshold = 60
	}
	if c.Generation.CallTimeoutSeconds == 0 {
		c.Generation.CallTimeoutSeconds = 60
	}
	if c.Generation.CooldownSeconds == 0 {
		c.Generation.CooldownSeconds = 300
	}
	if c.Generation.HealthTimeoutSeconds == 0 {
		c.Generation.HealthTimeoutSeconds = 10
	}
	if isZeroCriteria(c.Processing) {
		c.Processing = processing.DefaultCriteria()
	}
}

func isZeroCriteria(c processing.Criteria) bool {
	return c.MinRelevance == 0 && c.MinQuality == 0 && c.MaxAgeHours == 0 &&
		!c.ExcludeDuplicates && len(c.ExcludedKeywords) == 0 && len(c.RequiredKeywords) == 0
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("config error: 'cache.ttl_seconds' must be non-negative")
	}
	if c.Sources.TimeoutSeconds < 0 || c.Sources.MaxPerSource < 0 {
		return fmt.Errorf("config error: source timeout and max_per_source must be non-negative")
	}
	if t := c.Generation.HighlightThreshold; t < 0 || t > 100 {
		return fmt.Errorf("config error: 'generation.highlight_threshold' must be between 0 and 100")
	}
	if t := c.Generation.SocialThreshold; t < 0 || t > 100 {
		return fmt.Errorf("config error: 'generation.social_threshold' must be between 0 and 100")
	}
	if c.Generation.CallTimeoutSeconds < 0 || c.Generation.CooldownSeconds < 0 || c.Generation.HealthTimeoutSeconds < 0 {
		return fmt.Errorf("config error: generation timeouts must be non-negative")
	}
	for _, name := range c.Providers.Order {
		switch name {
		case "gemini", "anthropic", "openai":
		default:
			return fmt.Errorf("config error: unknown provider %q", name)
		}
	}
	switch c.Providers.Tier {
	case "", "lite", "standard", "advanced":
	default:
		return fmt.Errorf("config error: unknown model tier %q", c.Providers.Tier)
	}
	if err := c.Processing.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// CacheTTL returns the news cache lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// SourceTimeout returns the per-connector timeout.
func (c *Config) SourceTimeout() time.Duration {
	return time.Duration(c.Sources.TimeoutSeconds) * time.Second
}

// CallTimeout returns the per-provider call timeout.
func (c *Config) CallTimeout() time.Duration {
	return time.Duration(c.Generation.CallTimeoutSeconds) * time.Second
}

// Cooldown returns how long a failed provider is deprioritized.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.Generation.CooldownSeconds) * time.Second
}

// HealthTimeout returns the provider health-check timeout.
func (c *Config) HealthTimeout() time.Duration {
	return time.Duration(c.Generation.HealthTimeoutSeconds) * time.Second
}

// ProviderKey returns the API key configured for a provider name.
func (c *Config) ProviderKey(name string) string {
	switch name {
	case "gemini":
		return c.Providers.GeminiAPIKey
	case "anthropic":
		return c.Providers.AnthropicAPIKey
	case "openai":
		return c.Providers.OpenAIAPIKey
	}
	return ""
}
