package llm

import (
	"context"
	"log/slog"
	"time"

	"trivia-quiz-service/internal/metrics"
)

// LoggingProvider records every upstream request as a structured log line
// and a latency observation.
type LoggingProvider struct {
	inner   Provider
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// WithLogging wraps a Provider with request logging.
func WithLogging(p Provider, logger *slog.Logger, m *metrics.Metrics) Provider {
	return &LoggingProvider{inner: p, logger: logger, metrics: m}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	elapsed := time.Since(start)

	l.metrics.ObserveLLMRequest(l.inner.ModelID(), err == nil, elapsed)

	attrs := []any{
		"model", l.inner.ModelID(),
		"latency_ms", elapsed.Milliseconds(),
	}
	if err != nil {
		l.logger.Warn("llm request failed", append(attrs, "error", err)...)
		return nil, err
	}
	l.logger.Debug("llm request",
		append(attrs,
			"input_tokens", resp.Usage.InputTokens,
			"output_tokens", resp.Usage.OutputTokens,
			"stop", resp.StopReason,
		)...)
	return resp, nil
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
