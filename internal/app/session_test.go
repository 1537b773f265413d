package app_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

// uniformSet builds ten questions that all share the same correct index.
func uniformSet(correct int) domain.QuestionSet {
	set := domain.QuestionSet{Origin: domain.OriginRemote}
	for i := 0; i < domain.QuestionSetSize; i++ {
		set.Questions = append(set.Questions, domain.Question{
			Text:         fmt.Sprintf("Q%d", i),
			Choices:      []string{"w", "x", "y", "z"},
			CorrectIndex: correct,
		})
	}
	return set
}

func fixedClock() func() time.Time {
	ts := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	return func() time.Time { return ts }
}

func startedSession(t *testing.T, set domain.QuestionSet) *app.Session {
	t.Helper()
	s := app.NewSessionWithClock("s1", fixedClock())
	_, err := s.Start(set)
	require.NoError(t, err)
	return s
}

func TestStartInitializesFreshState(t *testing.T) {
	s := app.NewSessionWithClock("s1", fixedClock())
	assert.Equal(t, domain.PhaseIdle, s.Snapshot().Phase)

	snap, err := s.Start(uniformSet(1))
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseAwaitingAnswer, snap.Phase)
	assert.Equal(t, 1, snap.Round)
	assert.Equal(t, 0, snap.Score)
	assert.Equal(t, domain.StartingLives, snap.Lives)
	assert.Equal(t, "Q0", snap.Question)
	assert.Len(t, snap.Choices, domain.ChoiceCount)

	q, err := s.CurrentQuestion()
	require.NoError(t, err)
	assert.Equal(t, "Q0", q.Text)
}

func TestStartRejectsInvalidSetWithoutMutation(t *testing.T) {
	s := startedSession(t, uniformSet(1))
	_, err := s.SubmitAnswer(1)
	require.NoError(t, err)

	short := uniformSet(1)
	short.Questions = short.Questions[:9]
	_, err = s.Start(short)
	require.ErrorIs(t, err, domain.ErrInvalidQuestionSet)

	snap := s.Snapshot()
	assert.Equal(t, 10, snap.Score)
	assert.Equal(t, 2, snap.Round)
}

func TestAllCorrectWins(t *testing.T) {
	s := startedSession(t, uniformSet(1))

	var last domain.AnswerResult
	for i := 0; i < domain.QuestionSetSize; i++ {
		res, err := s.SubmitAnswer(1)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeCorrect, res.Outcome)
		last = res
	}

	assert.Equal(t, domain.TerminalWon, last.Terminal)
	assert.Equal(t, domain.PhaseWon, last.Snapshot.Phase)
	assert.Equal(t, 100, last.Snapshot.Score)
	assert.Equal(t, 3, last.Snapshot.Lives)

	final, ok := s.Final()
	require.True(t, ok)
	assert.Equal(t, domain.FinalResult{Won: true, FinalScore: 100}, final)

	_, err := s.CurrentQuestion()
	assert.ErrorIs(t, err, domain.ErrNoActiveQuestion)
}

func TestThreeWrongLoses(t *testing.T) {
	s := startedSession(t, uniformSet(1))

	for i := 0; i < 2; i++ {
		res, err := s.SubmitAnswer(0)
		require.NoError(t, err)
		assert.Equal(t, domain.TerminalNone, res.Terminal)
		assert.Equal(t, 1, res.CorrectIndex)
		assert.Equal(t, 0, res.Selected)
	}
	res, err := s.SubmitAnswer(0)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeIncorrect, res.Outcome)
	assert.Equal(t, domain.TerminalLost, res.Terminal)
	assert.Equal(t, domain.PhaseLost, res.Snapshot.Phase)
	assert.Equal(t, 0, res.Snapshot.Lives)
	// the third question stays current; nothing further is loaded
	assert.Equal(t, 3, res.Snapshot.Round)
	assert.Empty(t, res.Snapshot.Question)

	final, ok := s.Final()
	require.True(t, ok)
	assert.False(t, final.Won)
}

func TestSubmitAfterTerminalIsRejected(t *testing.T) {
	s := startedSession(t, uniformSet(1))
	for i := 0; i < 3; i++ {
		_, err := s.SubmitAnswer(2)
		require.NoError(t, err)
	}
	before := s.Snapshot()

	_, err := s.SubmitAnswer(1)
	require.ErrorIs(t, err, domain.ErrOrderingViolation)
	assert.Equal(t, before, s.Snapshot())
}

func TestSubmitWhileIdleIsOrderingViolation(t *testing.T) {
	s := app.NewSessionWithClock("s1", fixedClock())
	_, err := s.SubmitAnswer(0)
	require.ErrorIs(t, err, domain.ErrOrderingViolation)

	started := startedSession(t, uniformSet(0))
	started.Reset()
	_, err = started.SubmitAnswer(0)
	require.ErrorIs(t, err, domain.ErrOrderingViolation)
	assert.Equal(t, domain.PhaseIdle, started.Snapshot().Phase)
}

func TestInvalidChoiceIndexDoesNotMutate(t *testing.T) {
	s := startedSession(t, uniformSet(1))
	before := s.Snapshot()

	for _, idx := range []int{-1, 4, 99} {
		_, err := s.SubmitAnswer(idx)
		require.ErrorIs(t, err, domain.ErrInvalidChoiceIndex)
	}
	assert.Equal(t, before, s.Snapshot())
}

func TestLastQuestionCorrectGoesStraightToWon(t *testing.T) {
	set := uniformSet(2)
	s := startedSession(t, set)
	events, cancel := s.Subscribe()
	defer cancel()

	for i := 0; i < 9; i++ {
		_, err := s.SubmitAnswer(2)
		require.NoError(t, err)
	}
	drain(events)

	assert.Equal(t, 10, s.Snapshot().Round)
	res, err := s.SubmitAnswer(2)
	require.NoError(t, err)
	assert.Equal(t, domain.TerminalWon, res.Terminal)

	got := drain(events)
	require.Len(t, got, 2)
	assert.Equal(t, domain.EventAnswerCorrect, got[0].Type)
	assert.Equal(t, domain.EventFinished, got[1].Type)
	require.NotNil(t, got[1].Final)
	assert.True(t, got[1].Final.Won)
}

func TestMonotonicScoreAndLives(t *testing.T) {
	s := startedSession(t, uniformSet(3))
	choices := []int{3, 0, 3, 3, 1, 3, 3, 3, 3, 3}

	prevScore, prevLives := 0, domain.StartingLives
	for _, c := range choices {
		res, err := s.SubmitAnswer(c)
		require.NoError(t, err)
		snap := res.Snapshot
		assert.GreaterOrEqual(t, snap.Score, prevScore)
		assert.Zero(t, snap.Score%domain.PointsPerCorrect)
		assert.LessOrEqual(t, snap.Lives, prevLives)
		assert.GreaterOrEqual(t, snap.Lives, 0)
		prevScore, prevLives = snap.Score, snap.Lives
		if res.Terminal != domain.TerminalNone {
			break
		}
	}
	assert.Equal(t, domain.PhaseWon, s.Snapshot().Phase)
	assert.Equal(t, 80, prevScore)
	assert.Equal(t, 1, prevLives)
}

func TestEventsFollowEveryMutation(t *testing.T) {
	s := app.NewSessionWithClock("s1", fixedClock())
	events, cancel := s.Subscribe()
	defer cancel()

	_, err := s.Start(uniformSet(0))
	require.NoError(t, err)
	_, err = s.SubmitAnswer(1)
	require.NoError(t, err)

	got := drain(events)
	require.Len(t, got, 3)
	assert.Equal(t, domain.EventQuestionLoaded, got[0].Type)
	assert.Equal(t, domain.EventAnswerIncorrect, got[1].Type)
	require.NotNil(t, got[1].Answer)
	assert.Equal(t, 1, got[1].Answer.Selected)
	assert.Equal(t, 0, got[1].Answer.CorrectIndex)
	assert.Equal(t, domain.PhaseResolved, got[1].Snapshot.Phase)
	assert.Equal(t, domain.EventQuestionLoaded, got[2].Type)
	assert.Equal(t, "Q1", got[2].Snapshot.Question)
}

func TestRestartAfterTerminal(t *testing.T) {
	s := startedSession(t, uniformSet(1))
	for i := 0; i < 3; i++ {
		_, _ = s.SubmitAnswer(0)
	}
	require.Equal(t, domain.PhaseLost, s.Snapshot().Phase)

	snap, err := s.Start(uniformSet(2))
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseAwaitingAnswer, snap.Phase)
	assert.Equal(t, 3, snap.Lives)
	assert.Equal(t, 0, snap.Score)
	assert.Equal(t, 1, snap.Round)
}

func TestCallerCannotMutateOwnedQuestions(t *testing.T) {
	set := uniformSet(1)
	s := startedSession(t, set)
	set.Questions[0].Choices[1] = "tampered"
	set.Questions[0].CorrectIndex = 0

	res, err := s.SubmitAnswer(1)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCorrect, res.Outcome)
}

func TestCurrentQuestionReturnsCopy(t *testing.T) {
	s := startedSession(t, uniformSet(1))

	q, err := s.CurrentQuestion()
	require.NoError(t, err)
	q.Choices[0] = "tampered"

	again, err := s.CurrentQuestion()
	require.NoError(t, err)
	assert.Equal(t, "w", again.Choices[0])
	assert.Equal(t, "w", s.Snapshot().Choices[0])
}

func drain(ch <-chan domain.Event) []domain.Event {
	var out []domain.Event
	for {
		select {
		case ev := <-ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}
