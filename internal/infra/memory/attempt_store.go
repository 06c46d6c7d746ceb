package memory

import (
	"context"
	"sort"
	"sync"

	"assessment-engine/internal/domain"
)

// AttemptStore keeps submitted attempts in process memory. Useful for tests,
// demos and the terminal player.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts map[string]domain.AttemptResult
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{attempts: make(map[string]domain.AttemptResult)}
}

func (s *AttemptStore) RecordAttempt(_ context.Context, result domain.AttemptResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	result.Answers = result.Answers.Clone()
	s.attempts[result.ID] = result
	return nil
}

func (s *AttemptStore) ListAttempts(_ context.Context, quizID, userID string) ([]domain.AttemptResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.AttemptResult, 0)
	for _, a := range s.attempts {
		if a.QuizID != quizID || (userID != "" && a.UserID != userID) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	return out, nil
}

func (s *AttemptStore) GetAttempt(_ context.Context, attemptID string) (domain.AttemptResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.attempts[attemptID]
	if !ok {
		return domain.AttemptResult{}, domain.ErrAttemptNotFound
	}
	return a, nil
}
