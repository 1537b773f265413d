package app

import (
	"fmt"
	"sync"
	"time"

	"trivia-quiz-service/internal/domain"
)

// Session owns the authoritative state of one quiz run. All mutation goes
// through Start, Reset and SubmitAnswer; renderers only see snapshots.
type Session struct {
	id  string
	now func() time.Time

	mu          sync.Mutex
	questions   []domain.Question
	index       int
	score       int
	lives       int
	phase       domain.Phase
	startedAt   time.Time
	updatedAt   time.Time
	subscribers map[chan domain.Event]struct{}
}

// NewSession returns an idle session.
func NewSession(id string) *Session {
	return NewSessionWithClock(id, time.Now)
}

// NewSessionWithClock allows deterministic timestamps in tests.
func NewSessionWithClock(id string, now func() time.Time) *Session {
	return &Session{
		id:          id,
		now:         now,
		phase:       domain.PhaseIdle,
		updatedAt:   now(),
		subscribers: make(map[chan domain.Event]struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Start replaces any previous state with a fresh run over set. An invalid set
// leaves the session untouched.
func (s *Session) Start(set domain.QuestionSet) (domain.Snapshot, error) {
	if err := set.Validate(); err != nil {
		return domain.Snapshot{}, err
	}
	owned := set.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.questions = owned.Questions
	s.index = 0
	s.score = 0
	s.lives = domain.StartingLives
	s.phase = domain.PhaseAwaitingAnswer
	s.startedAt = now
	s.updatedAt = now

	snap := s.snapshotLocked()
	s.broadcastLocked(domain.Event{Type: domain.EventQuestionLoaded, Snapshot: snap})
	return snap, nil
}

// Reset discards the current run and returns the session to Idle while new
// questions are being fetched.
func (s *Session) Reset() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.questions = nil
	s.index = 0
	s.score = 0
	s.lives = domain.StartingLives
	s.phase = domain.PhaseIdle
	s.updatedAt = s.now()

	snap := s.snapshotLocked()
	s.broadcastLocked(domain.Event{Type: domain.EventLoading, Snapshot: snap})
	return snap
}

// CurrentQuestion returns the question awaiting an answer.
func (s *Session) CurrentQuestion() (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.PhaseAwaitingAnswer {
		return domain.Question{}, domain.ErrNoActiveQuestion
	}
	q := s.questions[s.index]
	q.Choices = append([]string(nil), q.Choices...)
	return q, nil
}

// SubmitAnswer resolves selected against the current question. Calls outside
// the awaiting-answer phase are rejected without touching score or lives.
func (s *Session) SubmitAnswer(selected int) (domain.AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseAwaitingAnswer {
		return domain.AnswerResult{}, fmt.Errorf("%w: phase is %s", domain.ErrOrderingViolation, s.phase)
	}
	if selected < 0 || selected >= domain.ChoiceCount {
		return domain.AnswerResult{}, fmt.Errorf("%w: %d", domain.ErrInvalidChoiceIndex, selected)
	}

	q := s.questions[s.index]
	s.phase = domain.PhaseResolved
	s.updatedAt = s.now()

	result := domain.AnswerResult{
		Selected:     selected,
		CorrectIndex: q.CorrectIndex,
		Terminal:     domain.TerminalNone,
	}
	eventType := domain.EventAnswerCorrect
	if selected == q.CorrectIndex {
		result.Outcome = domain.OutcomeCorrect
		s.score += domain.PointsPerCorrect
	} else {
		result.Outcome = domain.OutcomeIncorrect
		eventType = domain.EventAnswerIncorrect
		s.lives--
	}
	resolved := result
	resolved.Snapshot = s.snapshotLocked()
	s.broadcastLocked(domain.Event{Type: eventType, Snapshot: resolved.Snapshot, Answer: &resolved})

	// Lives are checked before advancing: a lost set is abandoned mid-way.
	switch {
	case s.lives == 0:
		s.phase = domain.PhaseLost
		result.Terminal = domain.TerminalLost
	case s.index+1 == len(s.questions):
		s.index++
		s.phase = domain.PhaseWon
		result.Terminal = domain.TerminalWon
	default:
		s.index++
		s.phase = domain.PhaseAwaitingAnswer
	}

	result.Snapshot = s.snapshotLocked()
	if s.phase.Terminal() {
		final := s.finalLocked()
		s.broadcastLocked(domain.Event{Type: domain.EventFinished, Snapshot: result.Snapshot, Final: &final})
	} else {
		s.broadcastLocked(domain.Event{Type: domain.EventQuestionLoaded, Snapshot: result.Snapshot})
	}
	return result, nil
}

// Snapshot returns the current read-only view.
func (s *Session) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Final returns the terminal payload once the session is won or lost.
func (s *Session) Final() (domain.FinalResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.phase.Terminal() {
		return domain.FinalResult{}, false
	}
	return s.finalLocked(), true
}

// Subscribe returns a channel of presentation events. The caller must invoke
// the returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, 16)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked(ev domain.Event) {
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			// drop the oldest queued event so a slow renderer never blocks the engine
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

func (s *Session) snapshotLocked() domain.Snapshot {
	snap := domain.Snapshot{
		SessionID:   s.id,
		Phase:       s.phase,
		TotalRounds: len(s.questions),
		Score:       s.score,
		Lives:       s.lives,
		UpdatedAt:   s.updatedAt,
	}
	if len(s.questions) == 0 {
		return snap
	}
	snap.Round = s.index + 1
	if snap.Round > len(s.questions) {
		snap.Round = len(s.questions)
	}
	if s.phase == domain.PhaseAwaitingAnswer || s.phase == domain.PhaseResolved {
		q := s.questions[s.index]
		snap.Question = q.Text
		snap.Choices = append([]string(nil), q.Choices...)
	}
	return snap
}

func (s *Session) finalLocked() domain.FinalResult {
	return domain.FinalResult{Won: s.phase == domain.PhaseWon, FinalScore: s.score}
}
