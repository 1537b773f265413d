package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"trivia-quiz-service/internal/domain"
)

// QuestionSetLoader fetches stored question sets from a backing store (e.g. Postgres).
type QuestionSetLoader interface {
	LoadQuestionSet(ctx context.Context, name string) (domain.QuestionSet, error)
}

// QuestionBank caches named question sets with TTL to avoid repeated DB hits.
type QuestionBank struct {
	loader QuestionSetLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedSet
}

type cachedSet struct {
	set       domain.QuestionSet
	expiresAt time.Time
}

func NewQuestionBank(loader QuestionSetLoader, ttl time.Duration) *QuestionBank {
	return &QuestionBank{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedSet),
	}
}

// GetQuestionSet returns a copy of the named set; callers may keep it.
func (b *QuestionBank) GetQuestionSet(ctx context.Context, name string) (domain.QuestionSet, error) {
	if set, ok := b.cached(name); ok {
		return set.Clone(), nil
	}

	result, err, _ := b.sf.Do(name, func() (interface{}, error) {
		if set, ok := b.cached(name); ok {
			return set, nil
		}

		set, err := b.loader.LoadQuestionSet(ctx, name)
		if err != nil {
			return domain.QuestionSet{}, err
		}
		if err := set.Validate(); err != nil {
			return domain.QuestionSet{}, err
		}

		expiresAt := b.clock().Add(b.ttlWithJitter())
		b.mu.Lock()
		b.cache[name] = cachedSet{
			set:       set,
			expiresAt: expiresAt,
		}
		b.mu.Unlock()
		return set, nil
	})
	if err != nil {
		return domain.QuestionSet{}, err
	}
	return result.(domain.QuestionSet).Clone(), nil
}

func (b *QuestionBank) cached(name string) (domain.QuestionSet, bool) {
	now := b.clock()
	b.mu.RLock()
	defer b.mu.RUnlock()
	entry, ok := b.cache[name]
	if !ok || !entry.expiresAt.After(now) {
		return domain.QuestionSet{}, false
	}
	return entry.set, true
}

func (b *QuestionBank) ttlWithJitter() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(b.ttl) / 10
	b.rndMu.Lock()
	defer b.rndMu.Unlock()
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}

// StaticLoader is a loader backed by an in-memory map (useful for tests/demos).
type StaticLoader struct {
	sets map[string]domain.QuestionSet
}

func NewStaticLoader(sets map[string]domain.QuestionSet) *StaticLoader {
	return &StaticLoader{sets: sets}
}

func (l *StaticLoader) LoadQuestionSet(_ context.Context, name string) (domain.QuestionSet, error) {
	if set, ok := l.sets[name]; ok {
		return set.Clone(), nil
	}
	return domain.QuestionSet{}, domain.ErrQuestionSetNotFound
}
