// Package sqlite stores attempts in an embedded SQLite database for
// single-node deployments and the terminal player.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"assessment-engine/internal/domain"
	_ "modernc.org/sqlite" // driver: sqlite
)

const defaultDSN = "file:attempts.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"

const schema = `
CREATE TABLE IF NOT EXISTS quiz_attempts (
  id TEXT PRIMARY KEY,
  quiz_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  score INTEGER NOT NULL,
  passed INTEGER NOT NULL,
  correct_count INTEGER NOT NULL,
  total_questions INTEGER NOT NULL,
  correct_points INTEGER NOT NULL,
  total_points INTEGER NOT NULL,
  answers_json TEXT NOT NULL,
  outcomes_json TEXT NOT NULL,
  started_at INTEGER NOT NULL,
  completed_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS quiz_attempts_quiz_user_idx ON quiz_attempts (quiz_id, user_id, completed_at);
`

// Open opens the database and ensures the schema exists.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return db, nil
}

// AttemptStore implements app.AttemptRepository on database/sql.
type AttemptStore struct {
	db *sql.DB
}

func NewAttemptStore(db *sql.DB) *AttemptStore {
	return &AttemptStore{db: db}
}

const attemptColumns = `id, quiz_id, user_id, score, passed, correct_count, total_questions,
  correct_points, total_points, answers_json, outcomes_json, started_at, completed_at`

func (s *AttemptStore) RecordAttempt(ctx context.Context, a domain.AttemptResult) error {
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	outcomes, err := json.Marshal(a.Outcomes)
	if err != nil {
		return fmt.Errorf("marshal outcomes: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO quiz_attempts (`+attemptColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.QuizID, a.UserID, a.Score, a.Passed, a.CorrectCount, a.TotalQuestions,
		a.CorrectPoints, a.TotalPoints, string(answers), string(outcomes),
		a.StartedAt.UnixMilli(), a.CompletedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (s *AttemptStore) ListAttempts(ctx context.Context, quizID, userID string) ([]domain.AttemptResult, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+attemptColumns+` FROM quiz_attempts
		WHERE quiz_id = ? AND (? = '' OR user_id = ?)
		ORDER BY completed_at DESC`, quizID, userID, userID)
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
	row := s.db.QueryRowContext(ctx, `SELECT `+attemptColumns+` FROM quiz_attempts WHERE id = ?`, attemptID)
	a, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AttemptResult{}, domain.ErrAttemptNotFound
	}
	return a, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row scanner) (domain.AttemptResult, error) {
	var (
		a                      domain.AttemptResult
		answers, outcomes      string
		startedMs, completedMs int64
	)
	err := row.Scan(&a.ID, &a.QuizID, &a.UserID, &a.Score, &a.Passed, &a.CorrectCount, &a.TotalQuestions,
		&a.CorrectPoints, &a.TotalPoints, &answers, &outcomes, &startedMs, &completedMs)
	if err != nil {
		return a, err
	}
	if err := json.Unmarshal([]byte(answers), &a.Answers); err != nil {
		return a, fmt.Errorf("unmarshal answers: %w", err)
	}
	if err := json.Unmarshal([]byte(outcomes), &a.Outcomes); err != nil {
		return a, fmt.Errorf("unmarshal outcomes: %w", err)
	}
	a.StartedAt = time.UnixMilli(startedMs).UTC()
	a.CompletedAt = time.UnixMilli(completedMs).UTC()
	return a, nil
}
