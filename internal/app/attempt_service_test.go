package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"assessment-engine/internal/app"
	"assessment-engine/internal/domain"
	"assessment-engine/internal/infra/memory"
)

func TestStartSubmitRecordsAttempt(t *testing.T) {
	ctx := context.Background()
	service, sessions, attempts := newTestService(threeQuestionQuiz())

	session, err := service.Start(ctx, "quiz-nav", "u1")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if sessions.Len() != 1 {
		t.Fatalf("expected session stored")
	}
	mustNoErr(t, session.Select("q1", "b"))

	result, err := service.Submit(ctx, session.ID())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	stored, err := attempts.GetAttempt(ctx, result.ID)
	if err != nil {
		t.Fatalf("attempt not recorded: %v", err)
	}
	if stored.Score != 33 || stored.Passed {
		t.Fatalf("unexpected stored grade %+v", stored.Grade)
	}

	history, err := service.History(ctx, "quiz-nav", "u1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if history.AttemptCount != 1 || history.BestScore == nil || *history.BestScore != 33 || history.HasPassed {
		t.Fatalf("unexpected history %+v", history)
	}
}

func TestStartUnknownQuiz(t *testing.T) {
	service, _, _ := newTestService(threeQuestionQuiz())

	_, err := service.Start(context.Background(), "quiz-unknown", "u1")
	if !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
	if _, err := service.Submit(context.Background(), "nope"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session not found, got %v", err)
	}
}

func TestStartRejectsPassedQuizWithoutRetry(t *testing.T) {
	ctx := context.Background()
	quiz := threeQuestionQuiz()
	quiz.AllowRetry = false
	service, _, attempts := newTestService(quiz)

	mustNoErr(t, attempts.RecordAttempt(ctx, domain.AttemptResult{
		ID: "old", QuizID: quiz.ID, UserID: "u1",
		Grade:       domain.Grade{Score: 100, Passed: true},
		CompletedAt: time.Now(),
	}))

	if _, err := service.Start(ctx, quiz.ID, "u1"); !errors.Is(err, domain.ErrAlreadyPassed) {
		t.Fatalf("expected ErrAlreadyPassed, got %v", err)
	}
	session, err := service.Start(ctx, quiz.ID, "u2")
	if err != nil {
		t.Fatalf("other users may still start: %v", err)
	}
	session.Close()
}

func TestRetryReplacesSession(t *testing.T) {
	ctx := context.Background()
	service, sessions, _ := newTestService(threeQuestionQuiz())

	session, err := service.Start(ctx, "quiz-nav", "u1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := service.Retry(ctx, session.ID()); !errors.Is(err, domain.ErrAttemptInProgress) {
		t.Fatalf("retry in progress: got %v", err)
	}
	if _, err := service.Submit(ctx, session.ID()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	next, err := service.Retry(ctx, session.ID())
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if _, ok := sessions.Get(session.ID()); ok {
		t.Fatalf("old session should be discarded")
	}
	if _, ok := sessions.Get(next.ID()); !ok {
		t.Fatalf("new session should be stored")
	}

	service.Exit(ctx, next.ID())
	if sessions.Len() != 0 {
		t.Fatalf("exit should drop the session")
	}
	service.Exit(ctx, next.ID())
}

func TestCompletionFailureKeepsSubmittedPhase(t *testing.T) {
	ctx := context.Background()
	sessions := memory.NewSessionStore()
	quizzes := memory.NewQuizRepository(memory.NewStaticQuizLoader(threeQuestionQuiz()), time.Minute)
	service := app.NewAttemptService(sessions, quizzes, failingAttempts{})

	session, err := service.Start(ctx, "quiz-nav", "u1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := service.Submit(ctx, session.ID()); err != nil {
		t.Fatalf("submit must succeed even when recording fails: %v", err)
	}
	if session.Phase() != app.PhaseSubmitted {
		t.Fatalf("expected submitted phase")
	}
}

type failingAttempts struct{}

func (failingAttempts) RecordAttempt(context.Context, domain.AttemptResult) error {
	return errors.New("database unavailable")
}

func (failingAttempts) ListAttempts(context.Context, string, string) ([]domain.AttemptResult, error) {
	return nil, nil
}

func (failingAttempts) GetAttempt(context.Context, string) (domain.AttemptResult, error) {
	return domain.AttemptResult{}, domain.ErrAttemptNotFound
}

func newTestService(quizzes ...domain.Quiz) (*app.AttemptService, *memory.SessionStore, *memory.AttemptStore) {
	sessionStore := memory.NewSessionStore()
	attemptStore := memory.NewAttemptStore()
	quizRepo := memory.NewQuizRepository(memory.NewStaticQuizLoader(quizzes...), 5*time.Minute)
	return app.NewAttemptService(sessionStore, quizRepo, attemptStore), sessionStore, attemptStore
}
