// Package llm provides centralized LLM configuration and client abstractions
// for the interview engine's generation, evaluation, and summary calls.
package llm

import "os"

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks: rephrasing a question the candidate did not understand
	TierLite ModelTier = "lite"
	// TierStandard is for structured output: question generation, answer evaluation
	TierStandard ModelTier = "standard"
	// TierAdvanced is for complex reasoning: the cross-question interview summary
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI is the OpenAI provider (not yet implemented)
	ProviderOpenAI Provider = "openai"
	// ProviderAnthropic is the Anthropic provider (not yet implemented)
	ProviderAnthropic Provider = "anthropic"
)

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
}

// DefaultConfig returns the default configuration (currently Gemini),
// honoring GEMINI_MODEL_LITE/STANDARD/ADVANCED env overrides.
func DefaultConfig() *Config {
	cfg := &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
	}
	if m := os.Getenv("GEMINI_MODEL_LITE"); m != "" {
		cfg.Models[TierLite] = m
	}
	if m := os.Getenv("GEMINI_MODEL_STANDARD"); m != "" {
		cfg.Models[TierStandard] = m
	}
	if m := os.Getenv("GEMINI_MODEL_ADVANCED"); m != "" {
		cfg.Models[TierAdvanced] = m
	}
	return cfg
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

// WithModel returns a copy of the config with the model for the given tier overridden
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Provider: c.Provider,
		Models:   make(map[ModelTier]string, len(c.Models)),
	}
	for t, m := range c.Models {
		newConfig.Models[t] = m
	}
	newConfig.Models[tier] = model
	return newConfig
}
