package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"assessment-engine/internal/domain"
)

func TestAttemptStoreFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	store := NewAttemptStore()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	records := []domain.AttemptResult{
		{ID: "a1", QuizID: "quiz-1", UserID: "u1", CompletedAt: base},
		{ID: "a2", QuizID: "quiz-1", UserID: "u1", CompletedAt: base.Add(time.Hour)},
		{ID: "a3", QuizID: "quiz-1", UserID: "u2", CompletedAt: base.Add(2 * time.Hour)},
		{ID: "a4", QuizID: "quiz-2", UserID: "u1", CompletedAt: base},
	}
	for _, r := range records {
		if err := store.RecordAttempt(ctx, r); err != nil {
			t.Fatalf("record %s: %v", r.ID, err)
		}
	}

	mine, err := store.ListAttempts(ctx, "quiz-1", "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(mine) != 2 || mine[0].ID != "a2" || mine[1].ID != "a1" {
		t.Fatalf("expected [a2 a1], got %+v", mine)
	}

	all, _ := store.ListAttempts(ctx, "quiz-1", "")
	if len(all) != 3 || all[0].ID != "a3" {
		t.Fatalf("expected 3 attempts newest first, got %+v", all)
	}

	if _, err := store.GetAttempt(ctx, "missing"); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
