package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"trivia-quiz-service/internal/domain"
)

func TestQuestionBankCaches(t *testing.T) {
	loader := &countingLoader{
		QuestionSetLoader: NewStaticLoader(map[string]domain.QuestionSet{
			"general": sampleSet(),
		}),
	}
	bank := NewQuestionBank(loader, time.Minute)

	if _, err := bank.GetQuestionSet(context.Background(), "general"); err != nil {
		t.Fatalf("get set: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := bank.GetQuestionSet(context.Background(), "general"); err != nil {
		t.Fatalf("get set 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestQuestionBankExpires(t *testing.T) {
	loader := &countingLoader{
		QuestionSetLoader: NewStaticLoader(map[string]domain.QuestionSet{"general": sampleSet()}),
	}
	bank := NewQuestionBank(loader, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bank.clock = func() time.Time { return now }

	_, _ = bank.GetQuestionSet(context.Background(), "general")
	now = now.Add(2 * time.Minute)
	_, _ = bank.GetQuestionSet(context.Background(), "general")
	if loader.calls != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.calls)
	}
}

func TestQuestionBankReturnsCopies(t *testing.T) {
	bank := NewQuestionBank(NewStaticLoader(map[string]domain.QuestionSet{"general": sampleSet()}), time.Minute)

	first, _ := bank.GetQuestionSet(context.Background(), "general")
	first.Questions[0].Text = "mutated"

	second, err := bank.GetQuestionSet(context.Background(), "general")
	if err != nil {
		t.Fatalf("get set: %v", err)
	}
	if second.Questions[0].Text == "mutated" {
		t.Fatalf("cached set was mutated through a returned copy")
	}
}

func TestQuestionBankRejectsMissingAndInvalid(t *testing.T) {
	short := sampleSet()
	short.Questions = short.Questions[:2]
	bank := NewQuestionBank(NewStaticLoader(map[string]domain.QuestionSet{"short": short}), time.Minute)

	if _, err := bank.GetQuestionSet(context.Background(), "missing"); !errors.Is(err, domain.ErrQuestionSetNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := bank.GetQuestionSet(context.Background(), "short"); !errors.Is(err, domain.ErrInvalidQuestionSet) {
		t.Fatalf("expected invalid set, got %v", err)
	}
}

func TestQuestionBankConcurrentNames(t *testing.T) {
	sets := map[string]domain.QuestionSet{}
	for i := 0; i < 8; i++ {
		sets[fmt.Sprintf("set-%d", i)] = sampleSet()
	}
	bank := NewQuestionBank(NewStaticLoader(sets), time.Minute)

	var wg sync.WaitGroup
	errs := make(chan error, 4*len(sets))
	for name := range sets {
		for j := 0; j < 4; j++ {
			wg.Add(1)
			go func(name string) {
				defer wg.Done()
				if _, err := bank.GetQuestionSet(context.Background(), name); err != nil {
					errs <- err
				}
			}(name)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent get: %v", err)
	}
}

type countingLoader struct {
	QuestionSetLoader
	calls int
}

func (l *countingLoader) LoadQuestionSet(ctx context.Context, name string) (domain.QuestionSet, error) {
	l.calls++
	return l.QuestionSetLoader.LoadQuestionSet(ctx, name)
}

func sampleSet() domain.QuestionSet {
	questions := make([]domain.Question, domain.QuestionSetSize)
	for i := range questions {
		questions[i] = domain.Question{
			Text:         fmt.Sprintf("What is %d + %d?", i, i),
			Choices:      []string{fmt.Sprint(2 * i), fmt.Sprint(2*i + 1), fmt.Sprint(2*i + 2), fmt.Sprint(2*i + 3)},
			CorrectIndex: 0,
		}
	}
	return domain.QuestionSet{Origin: domain.OriginFallback, Questions: questions}
}
