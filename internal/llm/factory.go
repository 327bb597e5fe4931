package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lalo8115/proyecto-vuelos/internal/store"
)

// NewProvider creates a Provider from configuration, wrapped with retry
// and event logging. eventRepo may be nil when history is disabled.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, log *slog.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg)
	case "openai", "openrouter":
		base, err = NewOpenAIProvider(cfg)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("LLM provider %q is not enabled", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// caller → retry → logging → base
	if eventRepo != nil {
		base = WithLogging(base, eventRepo, log)
	}
	return WithRetry(base, cfg.Retry), nil
}
