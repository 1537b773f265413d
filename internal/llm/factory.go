package llm

import (
	"context"
	"fmt"
	"log/slog"

	"trivia-quiz-service/internal/metrics"
)

// NewProvider builds the configured provider wrapped as caller → retry →
// logging → base. It returns (nil, nil) for the "none" provider, which makes
// every load fall back to local questions.
func NewProvider(ctx context.Context, cfg Config, logger *slog.Logger, m *metrics.Metrics) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error
	switch cfg.Provider {
	case "none":
		return nil, nil
	case "mock":
		base = NewMockProvider()
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithRetry(WithLogging(base, logger, m), cfg.Retry), nil
}
