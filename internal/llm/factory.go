package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/questa/internal/store"
	"go.uber.org/zap"
)

// NewProvider creates a Provider from configuration, wrapped with the
// middleware chain: caller → timeout → concurrency limit → retry → logging → base.
// eventRepo and logger may be nil. Provider "none" yields a nil Provider.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, logger *zap.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "none", "":
		return nil, nil
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return Wrap(base, cfg, eventRepo, logger), nil
}

// Wrap applies the standard middleware chain to an already-built provider.
func Wrap(base Provider, cfg Config, eventRepo store.EventRepo, logger *zap.Logger) Provider {
	logged := WithLogging(base, eventRepo, logger)
	retried := WithRetry(logged, cfg.Retry, logger)
	limited := WithConcurrencyLimit(retried, cfg.MaxConcurrency)
	return WithTimeout(limited, cfg.Timeout)
}
