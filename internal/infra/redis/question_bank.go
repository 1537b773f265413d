package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/memory"
	"trivia-quiz-service/internal/logging"
)

// QuestionBank caches question sets in Redis as JSON (one string key per set)
// and falls back to a loader on cache miss.
// Sets are stored as: SET quiz:set:{name} {json}
type QuestionBank struct {
	client *redis.Client
	loader memory.QuestionSetLoader
	ttl    time.Duration
	logger *slog.Logger
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuestionBank(client *redis.Client, loader memory.QuestionSetLoader, ttl time.Duration, logger *slog.Logger) *QuestionBank {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &QuestionBank{
		client: client,
		loader: loader,
		ttl:    ttl,
		logger: logger,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (b *QuestionBank) GetQuestionSet(ctx context.Context, name string) (domain.QuestionSet, error) {
	if set, ok := b.cached(ctx, name); ok {
		return set, nil
	}

	result, err, _ := b.sf.Do(name, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if set, ok := b.cached(ctx, name); ok {
			return set, nil
		}

		set, err := b.loader.LoadQuestionSet(ctx, name)
		if err != nil {
			return domain.QuestionSet{}, err
		}
		if err := set.Validate(); err != nil {
			return domain.QuestionSet{}, err
		}

		data, err := json.Marshal(set)
		if err != nil {
			return domain.QuestionSet{}, fmt.Errorf("encode question set: %w", err)
		}
		if err := b.client.Set(ctx, b.key(name), data, b.ttlWithJitter()).Err(); err != nil {
			b.logger.Warn("cache question set", "set", name, "error", err)
		}
		return set, nil
	})
	if err != nil {
		return domain.QuestionSet{}, err
	}
	return result.(domain.QuestionSet).Clone(), nil
}

// Invalidate drops the cached copy so the next read hits the loader.
func (b *QuestionBank) Invalidate(ctx context.Context, name string) error {
	return b.client.Del(ctx, b.key(name)).Err()
}

// cached treats unreadable entries as misses; the loader remains the source of truth.
func (b *QuestionBank) cached(ctx context.Context, name string) (domain.QuestionSet, bool) {
	data, err := b.client.Get(ctx, b.key(name)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			b.logger.Warn("read cached question set", "set", name, "error", err)
		}
		return domain.QuestionSet{}, false
	}
	var set domain.QuestionSet
	if err := json.Unmarshal(data, &set); err != nil || set.Validate() != nil {
		return domain.QuestionSet{}, false
	}
	return set, true
}

func (b *QuestionBank) key(name string) string {
	return "quiz:set:" + name
}

func (b *QuestionBank) ttlWithJitter() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	jitterMax := int64(b.ttl) / 10
	b.rndMu.Lock()
	defer b.rndMu.Unlock()
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}
