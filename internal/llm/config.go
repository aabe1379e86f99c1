// Package llm provides text-generation clients and model configuration.
// Each backend (Gemini, Anthropic, OpenAI-compatible) is exposed through the same Client interface.
package llm

import "fmt"

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for cheap checks such as health probes
	TierLite ModelTier = "lite"
	// TierStandard is for highlight extraction and post writing
	TierStandard ModelTier = "standard"
	// TierAdvanced is for long articles or retries that need more reasoning
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM backend
type Provider string

// Provider constants define supported LLM backends
const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// DefaultMaxTokens bounds response length when a config leaves it unset.
const DefaultMaxTokens = 2048

// DefaultTemperature keeps structured output stable across calls.
const DefaultTemperature = 0.2

// Config holds the model configuration for one backend
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	MaxTokens   int
	Temperature float64
	// BaseURL overrides the backend endpoint (OpenAI-compatible gateways, tests).
	BaseURL string
}

// DefaultConfig returns the default configuration (Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
	}
}

// DefaultAnthropicConfig returns the default Anthropic configuration
func DefaultAnthropicConfig() *Config {
	return &Config{
		Provider: ProviderAnthropic,
		Models: map[ModelTier]string{
			TierLite:     "claude-3-5-haiku-latest",
			TierStandard: "claude-sonnet-4-0",
			TierAdvanced: "claude-opus-4-0",
		},
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
	}
}

// DefaultOpenAIConfig returns the default OpenAI configuration
func DefaultOpenAIConfig() *Config {
	return &Config{
		Provider: ProviderOpenAI,
		Models: map[ModelTier]string{
			TierLite:     "gpt-4o-mini",
			TierStandard: "gpt-4o",
			TierAdvanced: "gpt-4.1",
		},
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
		BaseURL:     DefaultOpenAIBaseURL,
	}
}

// ConfigFor returns the default configuration for a provider.
func ConfigFor(p Provider) (*Config, error) {
	switch p {
	case ProviderGemini:
		return DefaultGeminiConfig(), nil
	case ProviderAnthropic:
		return DefaultAnthropicConfig(), nil
	case ProviderOpenAI:
		return DefaultOpenAIConfig(), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %q", p)
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a copy of the config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	next := *c
	next.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		next.Models[k] = v
	}
	next.Models[tier] = model
	return &next
}

func (c *Config) maxTokens() int {
	if c.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return c.MaxTokens
}
