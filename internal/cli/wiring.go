package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/infra/memory"
	pgstore "trivia-quiz-service/internal/infra/postgres"
	redisinfra "trivia-quiz-service/internal/infra/redis"
	"trivia-quiz-service/internal/llm"
	"trivia-quiz-service/internal/metrics"
	"trivia-quiz-service/internal/source"
)

const (
	defaultBankTTL      = 10 * time.Minute
	defaultSessionTTL   = 10 * time.Minute
	defaultFetchTimeout = 30 * time.Second
)

// backends holds the optional external stores named in the config.
type backends struct {
	redis *redis.Client
	pool  *pgxpool.Pool
}

func connectBackends(ctx context.Context, cfg config.Config) (*backends, error) {
	b := &backends{}
	if cfg.Redis.Addr != "" {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.pool = pool
	}
	return b, nil
}

func (b *backends) Close() {
	if b.redis != nil {
		_ = b.redis.Close()
	}
	if b.pool != nil {
		b.pool.Close()
	}
}

// questionBank returns the cached fallback bank, or nil when no database is configured.
func (b *backends) questionBank(cfg config.Config, logger *slog.Logger) source.QuestionBank {
	if b.pool == nil {
		return nil
	}
	loader := pgstore.NewQuestionSetStore(b.pool)
	ttl := config.TTLDuration(cfg.Quiz.BankTTL, defaultBankTTL)
	if b.redis != nil {
		return redisinfra.NewQuestionBank(b.redis, loader, ttl, logger)
	}
	return memory.NewQuestionBank(loader, ttl)
}

func llmConfig(cfg config.Config) llm.Config {
	out := llm.DefaultConfig()
	if cfg.LLM.Provider != "" {
		out.Provider = cfg.LLM.Provider
	}
	if cfg.LLM.Model != "" {
		out.Gemini.Model = cfg.LLM.Model
		out.OpenAI.Model = cfg.LLM.Model
		out.Anthropic.Model = cfg.LLM.Model
	}
	if cfg.LLM.BaseURL != "" {
		out.OpenAI.BaseURL = cfg.LLM.BaseURL
		out.Anthropic.BaseURL = cfg.LLM.BaseURL
	}
	r := cfg.LLM.Retry
	if r.MaxAttempts > 0 {
		out.Retry.MaxAttempts = r.MaxAttempts
	}
	out.Retry.InitialWait = config.TTLDuration(r.InitialWait, out.Retry.InitialWait)
	out.Retry.MaxWait = config.TTLDuration(r.MaxWait, out.Retry.MaxWait)
	if r.Multiplier > 0 {
		out.Retry.Multiplier = r.Multiplier
	}
	out.ApplyEnv()
	return out
}

// newSource wires the generator and fallback bank into a question source.
// A misconfigured generator is logged and replaced by fallback-only mode.
func newSource(ctx context.Context, cfg config.Config, bank source.QuestionBank, logger *slog.Logger, m *metrics.Metrics) *source.Source {
	provider, err := llm.NewProvider(ctx, llmConfig(cfg), logger, m)
	if err != nil {
		logger.Warn("question generator disabled, serving fallback questions", "error", err)
		provider = nil
	}

	opts := []source.Option{source.WithLogger(logger), source.WithMetrics(m)}
	if bank != nil {
		opts = append(opts, source.WithBank(bank))
	}
	return source.New(provider, source.Config{
		FallbackSet:  cfg.Quiz.FallbackSet,
		FetchTimeout: config.TTLDuration(cfg.Quiz.FetchTimeout, defaultFetchTimeout),
		Temperature:  cfg.LLM.Temperature,
		MaxTokens:    cfg.LLM.MaxTokens,
	}, opts...)
}
