package app

import (
	"context"
	"errors"
	"log/slog"

	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/logging"
	"trivia-quiz-service/internal/metrics"
)

// SessionRepository abstracts where live sessions are kept (in-memory, Redis-marked, etc).
type SessionRepository interface {
	GetOrCreate(sessionID string) *Session
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// sessionToucher is implemented by repositories that keep an expiring
// liveness marker per session.
type sessionToucher interface {
	Touch(ctx context.Context, sessionID string) error
}

// QuestionSource always yields a usable question set. A non-nil error reports
// why fallback content was substituted and is for observability only.
type QuestionSource interface {
	Load(ctx context.Context) (domain.QuestionSet, error)
}

// FallbackNotice is shown to players when the generated questions were unavailable.
const FallbackNotice = "Could not generate fresh questions; using the built-in quiz instead."

// QuizService contains the quiz use cases driven by a renderer.
type QuizService struct {
	sessions SessionRepository
	source   QuestionSource
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option customizes a QuizService.
type Option func(*QuizService)

func WithLogger(logger *slog.Logger) Option {
	return func(s *QuizService) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *QuizService) { s.metrics = m }
}

func NewQuizService(store SessionRepository, source QuestionSource, opts ...Option) *QuizService {
	s := &QuizService{sessions: store, source: source, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Attach registers the session for a connection and subscribes to its events.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Attach(_ context.Context, sessionID string) (<-chan domain.Event, func()) {
	session := s.sessions.GetOrCreate(sessionID)
	s.metrics.SessionAttached()
	return session.Subscribe()
}

// Start loads a question set and begins a fresh run, discarding whatever the
// session held before. It serves both the first start and every restart.
func (s *QuizService) Start(ctx context.Context, sessionID string) (domain.StartResult, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.StartResult{}, domain.ErrSessionNotFound
	}
	session.Reset()

	set, loadErr := s.source.Load(ctx)
	snap, err := session.Start(set)
	if err != nil {
		return domain.StartResult{}, err
	}

	result := domain.StartResult{Snapshot: snap, Origin: set.Origin}
	if loadErr != nil {
		result.Notice = FallbackNotice
	}
	s.metrics.SessionStarted(string(set.Origin))
	s.logger.Info("session started", "session", sessionID, "origin", set.Origin)
	return result, nil
}

// SubmitAnswer resolves a choice for the session's current question.
func (s *QuizService) SubmitAnswer(ctx context.Context, sessionID string, choice int) (domain.AnswerResult, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.AnswerResult{}, domain.ErrSessionNotFound
	}
	if t, ok := s.sessions.(sessionToucher); ok {
		if err := t.Touch(ctx, sessionID); err != nil {
			s.logger.Debug("refresh session marker", "session", sessionID, "error", err)
		}
	}

	result, err := session.SubmitAnswer(choice)
	switch {
	case errors.Is(err, domain.ErrOrderingViolation):
		s.metrics.AnswerRejected("ordering_violation")
		s.logger.Warn("answer ignored", "session", sessionID, "error", err)
		return result, err
	case errors.Is(err, domain.ErrInvalidChoiceIndex):
		s.metrics.AnswerRejected("invalid_choice")
		s.logger.Warn("answer rejected", "session", sessionID, "error", err)
		return result, err
	case err != nil:
		return result, err
	}

	s.metrics.AnswerResolved(string(result.Outcome))
	if result.Terminal != domain.TerminalNone {
		won := result.Terminal == domain.TerminalWon
		s.metrics.SessionFinished(won)
		s.logger.Info("session finished", "session", sessionID, "won", won, "score", result.Snapshot.Score)
	}
	return result, nil
}

// Snapshot returns the read-only view of a session.
func (s *QuizService) Snapshot(_ context.Context, sessionID string) (domain.Snapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Snapshot{}, domain.ErrSessionNotFound
	}
	return session.Snapshot(), nil
}

// Close drops the session; it holds no external resources to release.
func (s *QuizService) Close(_ context.Context, sessionID string) {
	if _, ok := s.sessions.Get(sessionID); !ok {
		return
	}
	s.sessions.Delete(sessionID)
	s.metrics.SessionDetached()
}
