package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/memory"
)

func TestQuestionBankCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		QuestionSetLoader: memory.NewStaticLoader(map[string]domain.QuestionSet{
			"general": sampleSet(),
		}),
	}
	bank := NewQuestionBank(client, loader, time.Minute, nil)

	set, err := bank.GetQuestionSet(context.Background(), "general")
	if err != nil {
		t.Fatalf("get set: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("quiz:set:general") {
		t.Fatalf("expected set cached in redis")
	}

	// Second call should hit cache, loader not incremented.
	cached, err := bank.GetQuestionSet(context.Background(), "general")
	if err != nil {
		t.Fatalf("get set 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if cached.Questions[3].Text != set.Questions[3].Text || cached.Questions[3].CorrectIndex != set.Questions[3].CorrectIndex {
		t.Fatalf("cached set differs from loaded set")
	}
}

func TestQuestionBankIgnoresCorruptCache(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	if err := mr.Set("quiz:set:general", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	loader := &countingLoader{
		QuestionSetLoader: memory.NewStaticLoader(map[string]domain.QuestionSet{"general": sampleSet()}),
	}
	bank := NewQuestionBank(newClient(mr), loader, time.Minute, nil)

	if _, err := bank.GetQuestionSet(context.Background(), "general"); err != nil {
		t.Fatalf("get set: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader on corrupt cache, calls=%d", loader.calls)
	}

	raw, _ := mr.Get("quiz:set:general")
	var stored domain.QuestionSet
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		t.Fatalf("expected cache rewritten with valid json: %v", err)
	}
}

func TestQuestionBankMissingSet(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	bank := NewQuestionBank(newClient(mr), memory.NewStaticLoader(nil), time.Minute, nil)
	if _, err := bank.GetQuestionSet(context.Background(), "nope"); !errors.Is(err, domain.ErrQuestionSetNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if mr.Exists("quiz:set:nope") {
		t.Fatalf("expected nothing cached for a missing set")
	}
}

type countingLoader struct {
	memory.QuestionSetLoader
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
			Text:         fmt.Sprintf("Which port does service %d use?", i),
			Choices:      []string{"80", "443", "8080", "5432"},
			CorrectIndex: i % domain.ChoiceCount,
		}
	}
	return domain.QuestionSet{Origin: domain.OriginFallback, Questions: questions}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
