package memory

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"assessment-engine/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuizLoader fetches quiz definitions from a backing store (Postgres, a directory of files).
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizRepository keeps validated quiz definitions in process memory.
//
// Every attempt start, public quiz view and PDF render reads a definition, so
// entries live for ttl plus up to 10% jitter and concurrent misses for one
// quiz share a single load. A definition failing Quiz.Validate is never
// cached: the error reaches the caller and the next read tries the loader again.
type QuizRepository struct {
	loader QuizLoader
	ttl    time.Duration
	clock  func() time.Time
	loads  singleflight.Group

	jitterMu sync.Mutex
	jitter   *rand.Rand

	mu      sync.RWMutex
	entries map[string]quizEntry
}

type quizEntry struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

func NewQuizRepository(loader QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		loader:  loader,
		ttl:     ttl,
		clock:   time.Now,
		jitter:  rand.New(rand.NewSource(time.Now().UnixNano())),
		entries: make(map[string]quizEntry),
	}
}

// GetQuiz returns the definition of quizID, loading and validating it on a miss.
func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := r.fresh(quizID); ok {
		return quiz, nil
	}

	v, err, _ := r.loads.Do(quizID, func() (interface{}, error) {
		// another caller may have filled the entry while we queued
		if quiz, ok := r.fresh(quizID); ok {
			return quiz, nil
		}
		quiz, err := r.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}
		if err := quiz.Validate(); err != nil {
			return domain.Quiz{}, fmt.Errorf("quiz %s: %w", quizID, err)
		}
		r.store(quizID, quiz)
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return v.(domain.Quiz), nil
}

// Invalidate drops a cached definition so the next read reloads it, e.g.
// after `migrate --seed` rewrote it.
func (r *QuizRepository) Invalidate(quizID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, quizID)
}

func (r *QuizRepository) fresh(quizID string) (domain.Quiz, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[quizID]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return domain.Quiz{}, false
	}
	return entry.quiz, true
}

func (r *QuizRepository) store(quizID string, quiz domain.Quiz) {
	expiresAt := r.clock().Add(r.lifetime())
	r.mu.Lock()
	r.entries[quizID] = quizEntry{quiz: quiz, expiresAt: expiresAt}
	r.mu.Unlock()
}

// lifetime is ttl plus up to 10% jitter so entries loaded together do not
// expire together. A non-positive ttl disables caching.
func (r *QuizRepository) lifetime() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	r.jitterMu.Lock()
	defer r.jitterMu.Unlock()
	return r.ttl + time.Duration(r.jitter.Int63n(int64(r.ttl)/10+1))
}

// StaticQuizLoader serves a fixed set of quizzes: the built-in sample, tests.
type StaticQuizLoader struct {
	quizzes map[string]domain.Quiz
}

func NewStaticQuizLoader(quizzes ...domain.Quiz) *StaticQuizLoader {
	byID := make(map[string]domain.Quiz, len(quizzes))
	for _, q := range quizzes {
		byID[q.ID] = q
	}
	return &StaticQuizLoader{quizzes: byID}
}

func (l *StaticQuizLoader) LoadQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := l.quizzes[quizID]; ok {
		return quiz, nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}
