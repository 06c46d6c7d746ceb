package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"assessment-engine/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// AttemptStore records submitted attempts in the quiz_attempts table.
type AttemptStore struct {
	pool *pgxpool.Pool
}

func NewAttemptStore(pool *pgxpool.Pool) *AttemptStore {
	return &AttemptStore{pool: pool}
}

const attemptColumns = `id, quiz_id, user_id, score, passed, correct_count, total_questions,
	correct_points, total_points, answers, outcomes, started_at, completed_at`

func (s *AttemptStore) RecordAttempt(ctx context.Context, a domain.AttemptResult) error {
	args, err := attemptArgs(a)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `INSERT INTO quiz_attempts (`+attemptColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`, args...)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// attemptArgs lists the insert arguments in attemptColumns order, with
// answers and outcomes encoded for the JSONB columns.
func attemptArgs(a domain.AttemptResult) ([]interface{}, error) {
	answers := a.Answers
	if answers == nil {
		answers = domain.Answers{}
	}
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("marshal answers: %w", err)
	}
	outcomes := a.Outcomes
	if outcomes == nil {
		outcomes = []domain.Outcome{}
	}
	outcomesJSON, err := json.Marshal(outcomes)
	if err != nil {
		return nil, fmt.Errorf("marshal outcomes: %w", err)
	}
	return []interface{}{
		a.ID, a.QuizID, a.UserID, a.Score, a.Passed, a.CorrectCount, a.TotalQuestions,
		a.CorrectPoints, a.TotalPoints, answersJSON, outcomesJSON, a.StartedAt, a.CompletedAt,
	}, nil
}

func (s *AttemptStore) ListAttempts(ctx context.Context, quizID, userID string) ([]domain.AttemptResult, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+attemptColumns+` FROM quiz_attempts
		WHERE quiz_id = $1 AND ($2::text = '' OR user_id = $2)
		ORDER BY completed_at DESC`, quizID, userID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	out := make([]domain.AttemptResult, 0)
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *AttemptStore) GetAttempt(ctx context.Context, attemptID string) (domain.AttemptResult, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+attemptColumns+` FROM quiz_attempts WHERE id = $1`, attemptID)
	return scanOneAttempt(row)
}

func scanOneAttempt(row pgx.Row) (domain.AttemptResult, error) {
	a, err := scanAttempt(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.AttemptResult{}, domain.ErrAttemptNotFound
	}
	return a, err
}

func scanAttempt(row pgx.Row) (domain.AttemptResult, error) {
	var (
		a        domain.AttemptResult
		answers  []byte
		outcomes []byte
	)
	err := row.Scan(&a.ID, &a.QuizID, &a.UserID, &a.Score, &a.Passed, &a.CorrectCount, &a.TotalQuestions,
		&a.CorrectPoints, &a.TotalPoints, &answers, &outcomes, &a.StartedAt, &a.CompletedAt)
	if err != nil {
		return a, err
	}
	if err := json.Unmarshal(answers, &a.Answers); err != nil {
		return a, fmt.Errorf("unmarshal answers: %w", err)
	}
	if err := json.Unmarshal(outcomes, &a.Outcomes); err != nil {
		return a, fmt.Errorf("unmarshal outcomes: %w", err)
	}
	return a, nil
}
