package llm

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/lalo8115/proyecto-vuelos/internal/backoff"
)

// Providers lists the provider names accepted by Config.Provider.
var Providers = []string{"anthropic", "openai", "openrouter", "gemini", "mock"}

// Config selects and configures the advisory LLM. An empty Provider (or
// "none") disables the advisory.
type Config struct {
	Provider string
	// Model is a friendly alias (see KnownModels) or a raw model ID.
	// Empty selects the provider default.
	Model   string
	APIKey  string
	BaseURL string // OpenAI-compatible endpoints only.

	Retry RetryConfig

	// Timeout bounds one advisory request including retries.
	Timeout time.Duration
}

// RetryConfig bounds retries of rate limits and provider outages.
type RetryConfig = backoff.Policy

// DefaultConfig has the advisory disabled.
func DefaultConfig() Config {
	return Config{
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 20 * time.Second,
	}
}

// Enabled reports whether a provider is selected.
func (c Config) Enabled() bool {
	return c.Provider != "" && c.Provider != "none"
}

// ModelOrDefault returns Model, or the provider's default alias.
func (c Config) ModelOrDefault() string {
	if c.Model != "" {
		return c.Model
	}
	switch c.Provider {
	case "anthropic":
		return "claude-haiku"
	case "openai":
		return "gpt-4o-mini"
	case "openrouter":
		return "google/gemini-2.0-flash-exp"
	case "gemini":
		return "gemini-flash"
	default:
		return c.Provider
	}
}

// Discover fills Provider and APIKey from the vendors' standard env vars
// when no provider was configured. Gemini wins over OpenAI over Anthropic
// over OpenRouter.
func Discover(cfg Config) (Config, bool) {
	if cfg.Enabled() {
		return cfg, true
	}
	for _, c := range []struct{ env, provider string }{
		{"GEMINI_API_KEY", "gemini"},
		{"OPENAI_API_KEY", "openai"},
		{"ANTHROPIC_API_KEY", "anthropic"},
		{"OPENROUTER_API_KEY", "openrouter"},
	} {
		if k := os.Getenv(c.env); k != "" {
			cfg.Provider = c.provider
			cfg.APIKey = k
			return cfg, true
		}
	}
	return cfg, false
}

// Validate checks the provider name and that it has an API key.
func (c Config) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if !slices.Contains(Providers, c.Provider) {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.Provider != "mock" && c.APIKey == "" {
		return fmt.Errorf("llm.api_key (VUELOS_LLM_API_KEY) is required for the %s provider", c.Provider)
	}
	return nil
}
