package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func validSet() QuestionSet {
	set := QuestionSet{Origin: OriginRemote}
	for i := 0; i < QuestionSetSize; i++ {
		set.Questions = append(set.Questions, Question{
			Text:         fmt.Sprintf("Question %d?", i),
			Choices:      []string{"a", "b", "c", "d"},
			CorrectIndex: i % ChoiceCount,
		})
	}
	return set
}

func TestQuestionSetValidate(t *testing.T) {
	if err := validSet().Validate(); err != nil {
		t.Fatalf("expected valid set, got %v", err)
	}

	cases := map[string]func(*QuestionSet){
		"too short":       func(s *QuestionSet) { s.Questions = s.Questions[:9] },
		"blank text":      func(s *QuestionSet) { s.Questions[3].Text = "   " },
		"three choices":   func(s *QuestionSet) { s.Questions[0].Choices = []string{"a", "b", "c"} },
		"duplicate":       func(s *QuestionSet) { s.Questions[5].Choices = []string{"a", "a", "c", "d"} },
		"empty choice":    func(s *QuestionSet) { s.Questions[5].Choices[2] = "" },
		"index too large": func(s *QuestionSet) { s.Questions[9].CorrectIndex = 4 },
		"negative index":  func(s *QuestionSet) { s.Questions[1].CorrectIndex = -1 },
	}
	for name, mutate := range cases {
		set := validSet()
		mutate(&set)
		if err := set.Validate(); !errors.Is(err, ErrInvalidQuestionSet) {
			t.Fatalf("%s: expected ErrInvalidQuestionSet, got %v", name, err)
		}
	}
}

func TestCloneDoesNotShareChoices(t *testing.T) {
	set := validSet()
	clone := set.Clone()
	clone.Questions[0].Choices[0] = "changed"
	if set.Questions[0].Choices[0] != "a" {
		t.Fatalf("clone mutated original: %q", set.Questions[0].Choices[0])
	}
}

func TestPhaseText(t *testing.T) {
	data, err := json.Marshal(struct {
		Phase Phase `json:"phase"`
	}{PhaseAwaitingAnswer})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"phase":"awaitingAnswer"}` {
		t.Fatalf("unexpected json %s", data)
	}

	var p Phase
	if err := p.UnmarshalText([]byte("lost")); err != nil || p != PhaseLost {
		t.Fatalf("expected lost, got %v (%v)", p, err)
	}
	if !PhaseWon.Terminal() || PhaseResolved.Terminal() {
		t.Fatalf("terminal classification wrong")
	}
}
