package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/llm"
	"trivia-quiz-service/internal/logging"
	"trivia-quiz-service/internal/metrics"
)

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 8192
)

// QuestionBank serves stored question sets by name.
type QuestionBank interface {
	GetQuestionSet(ctx context.Context, name string) (domain.QuestionSet, error)
}

// Config tunes a Source.
type Config struct {
	// FallbackSet names the bank entry used as fallback content.
	FallbackSet  string
	FetchTimeout time.Duration
	Temperature  float64
	MaxTokens    int
}

// Source fetches generated questions and normalizes them, substituting the
// fallback set on any failure.
type Source struct {
	provider llm.Provider
	bank     QuestionBank
	cfg      Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option customizes a Source.
type Option func(*Source)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Source) { s.metrics = m }
}

// WithBank makes the named bank entry the fallback, ahead of the built-in set.
func WithBank(bank QuestionBank) Option {
	return func(s *Source) { s.bank = bank }
}

// New builds a Source. A nil provider means every load uses fallback content.
func New(provider llm.Provider, cfg Config, opts ...Option) *Source {
	if cfg.FallbackSet == "" {
		cfg.FallbackSet = "fallback"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	s := &Source{provider: provider, cfg: cfg, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns a usable question set. The error, when non-nil, explains why
// the fallback was used and wraps domain.ErrSourceFetch or domain.ErrSourceParse.
func (s *Source) Load(ctx context.Context) (domain.QuestionSet, error) {
	text, err := s.Fetch(ctx)
	reason := "fetch"
	if err == nil {
		var set domain.QuestionSet
		if set, err = Parse(text); err == nil {
			s.metrics.SourceLoaded(string(set.Origin), "ok")
			return set, nil
		}
		reason = "parse"
	}

	// the bank is only consulted once generated content is known to be unusable
	set := asFallback(s.fallback(ctx))
	s.metrics.SourceLoaded(string(set.Origin), reason)
	s.logger.Warn("using fallback questions", "reason", reason, "error", err)
	return set, err
}

// Fetch asks the upstream generator for a quiz and returns its raw text.
func (s *Source) Fetch(ctx context.Context) (string, error) {
	if s.provider == nil {
		return "", fmt.Errorf("%w: no generator configured", domain.ErrSourceFetch)
	}
	if s.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.FetchTimeout)
		defer cancel()
	}

	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Prompt:      userPrompt,
		Schema:      &llm.Schema{Name: schemaName, Definition: questionSetSchema()},
		JSON:        true,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrSourceFetch, err)
	}
	return resp.Text, nil
}

// fallback prefers the bank's named set and drops to the built-in one when
// the bank is missing, failing, or holds an invalid set.
func (s *Source) fallback(ctx context.Context) domain.QuestionSet {
	if s.bank == nil {
		return Fallback()
	}
	set, err := s.bank.GetQuestionSet(ctx, s.cfg.FallbackSet)
	if err == nil {
		err = set.Validate()
	}
	if err != nil {
		s.logger.Warn("fallback bank unavailable, using built-in set", "set", s.cfg.FallbackSet, "error", err)
		return Fallback()
	}
	return set
}
