package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"assessment-engine/internal/domain"
)

func TestQuizRepositoryCaches(t *testing.T) {
	loader := &countingLoader{QuizLoader: NewStaticQuizLoader(sampleQuiz())}
	repo := NewQuizRepository(loader, time.Minute)

	if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected loader once, got %d", loader.count())
	}

	if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz 2: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.count())
	}

	repo.Invalidate("quiz-1")
	if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz 3: %v", err)
	}
	if loader.count() != 2 {
		t.Fatalf("expected reload after invalidate, loader calls %d", loader.count())
	}
}

func TestQuizRepositoryRejectsInvalidQuiz(t *testing.T) {
	broken := domain.Quiz{ID: "broken"}
	repo := NewQuizRepository(NewStaticQuizLoader(broken), time.Minute)

	_, err := repo.GetQuiz(context.Background(), "broken")
	if !errors.Is(err, domain.ErrInvalidQuiz) {
		t.Fatalf("expected invalid quiz, got %v", err)
	}
	if _, err := repo.GetQuiz(context.Background(), "nope"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

type countingLoader struct {
	QuizLoader
	mu    sync.Mutex
	calls int
}

func (l *countingLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	return l.QuizLoader.LoadQuiz(ctx, quizID)
}

func (l *countingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:           "quiz-1",
		Title:        "Arithmetic",
		PassingScore: 50,
		Questions: []domain.Question{
			domain.SingleChoice{
				Header: domain.Header{ID: "q1", Text: "What is 2 + 2?", Points: 1},
				Options: []domain.Option{
					{ID: "o1", Text: "3"},
					{ID: "o2", Text: "4", Correct: true},
				},
			},
		},
	}
}

func TestQuizRepositoryExpiresAndSharesLoads(t *testing.T) {
	loader := &countingLoader{QuizLoader: NewStaticQuizLoader(sampleQuiz())}
	repo := NewQuizRepository(loader, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
				t.Errorf("get quiz: %v", err)
			}
		}()
	}
	wg.Wait()
	if loader.count() != 1 {
		t.Fatalf("expected concurrent misses to share one load, got %d", loader.count())
	}

	// within ttl, regardless of jitter
	now = now.Add(59 * time.Second)
	if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected cache hit before expiry, got %d loads", loader.count())
	}

	// past ttl plus the 10% jitter ceiling
	now = now.Add(8 * time.Second)
	if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.count() != 2 {
		t.Fatalf("expected reload after expiry, got %d loads", loader.count())
	}
}

func TestQuizRepositoryDoesNotCacheInvalidQuiz(t *testing.T) {
	loader := &countingLoader{QuizLoader: NewStaticQuizLoader(domain.Quiz{ID: "broken"})}
	repo := NewQuizRepository(loader, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := repo.GetQuiz(context.Background(), "broken"); !errors.Is(err, domain.ErrInvalidQuiz) {
			t.Fatalf("expected invalid quiz, got %v", err)
		}
	}
	if loader.count() != 2 {
		t.Fatalf("invalid quiz must not be cached, got %d loads", loader.count())
	}
}
