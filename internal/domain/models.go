package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	// QuestionSetSize is the number of rounds in every session.
	QuestionSetSize = 10
	// ChoiceCount is the number of choices each question offers.
	ChoiceCount = 4
	// StartingLives is the lives pool a fresh session begins with.
	StartingLives = 3
	// PointsPerCorrect is the flat score increment for a correct answer.
	PointsPerCorrect = 10
)

// Origin labels where a question set came from.
type Origin string

const (
	OriginRemote   Origin = "remote"
	OriginFallback Origin = "fallback"
)

// Question is a multiple-choice question with exactly one correct choice.
type Question struct {
	Text         string   `json:"question"`
	Choices      []string `json:"choices"`
	CorrectIndex int      `json:"correct"`
}

// Validate checks the question against the shape every session relies on.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("question text is empty")
	}
	if len(q.Choices) != ChoiceCount {
		return fmt.Errorf("expected %d choices, got %d", ChoiceCount, len(q.Choices))
	}
	seen := make(map[string]struct{}, len(q.Choices))
	for i, choice := range q.Choices {
		if strings.TrimSpace(choice) == "" {
			return fmt.Errorf("choice %d is empty", i)
		}
		if _, dup := seen[choice]; dup {
			return fmt.Errorf("choice %d duplicates %q", i, choice)
		}
		seen[choice] = struct{}{}
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= ChoiceCount {
		return fmt.Errorf("correct index %d out of range [0,%d]", q.CorrectIndex, ChoiceCount-1)
	}
	return nil
}

// QuestionSet is the fixed-length collection of questions driving one session.
type QuestionSet struct {
	Origin    Origin     `json:"origin,omitempty"`
	Questions []Question `json:"questions"`
}

// Validate rejects the set as a whole if any question is malformed.
func (s QuestionSet) Validate() error {
	if len(s.Questions) != QuestionSetSize {
		return fmt.Errorf("%w: expected %d questions, got %d", ErrInvalidQuestionSet, QuestionSetSize, len(s.Questions))
	}
	for i, q := range s.Questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("%w: question %d: %v", ErrInvalidQuestionSet, i, err)
		}
	}
	return nil
}

// Clone returns a deep copy so callers never share choice slices.
func (s QuestionSet) Clone() QuestionSet {
	out := QuestionSet{Origin: s.Origin, Questions: make([]Question, len(s.Questions))}
	for i, q := range s.Questions {
		out.Questions[i] = Question{
			Text:         q.Text,
			Choices:      append([]string(nil), q.Choices...),
			CorrectIndex: q.CorrectIndex,
		}
	}
	return out
}

// Outcome is the correctness of a single submitted answer.
type Outcome string

const (
	OutcomeCorrect   Outcome = "correct"
	OutcomeIncorrect Outcome = "incorrect"
)

// Terminal reports whether an answer ended the session.
type Terminal string

const (
	TerminalNone Terminal = "none"
	TerminalLost Terminal = "lost"
	TerminalWon  Terminal = "won"
)

// Snapshot is the read-only view a renderer draws from.
type Snapshot struct {
	SessionID   string    `json:"sessionId"`
	Phase       Phase     `json:"phase"`
	Round       int       `json:"round"`
	TotalRounds int       `json:"totalRounds"`
	Question    string    `json:"question,omitempty"`
	Choices     []string  `json:"choices,omitempty"`
	Score       int       `json:"score"`
	Lives       int       `json:"lives"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// AnswerResult summarizes how a submission was resolved.
type AnswerResult struct {
	Outcome      Outcome  `json:"outcome"`
	Terminal     Terminal `json:"terminal"`
	Selected     int      `json:"selected"`
	CorrectIndex int      `json:"correctIndex"`
	Snapshot     Snapshot `json:"snapshot"`
}

// FinalResult is the payload of a finished session.
type FinalResult struct {
	Won        bool `json:"won"`
	FinalScore int  `json:"finalScore"`
}

// EventType names a presentation notification.
type EventType string

const (
	EventLoading         EventType = "loading"
	EventQuestionLoaded  EventType = "questionLoaded"
	EventAnswerCorrect   EventType = "answerCorrect"
	EventAnswerIncorrect EventType = "answerIncorrect"
	EventFinished        EventType = "finished"
)

// Event is emitted to subscribers after every state change.
type Event struct {
	Type     EventType     `json:"type"`
	Snapshot Snapshot      `json:"snapshot"`
	Answer   *AnswerResult `json:"answer,omitempty"`
	Final    *FinalResult  `json:"final,omitempty"`
}

// StartResult is returned when a session (re)starts.
type StartResult struct {
	Snapshot Snapshot `json:"snapshot"`
	Origin   Origin   `json:"origin"`
	// Notice is a user-facing message set when fallback content is in use.
	Notice string `json:"notice,omitempty"`
}
