package report

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"assessment-engine/internal/domain"
	"assessment-engine/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:           "quiz-r",
		Title:        "Reporting 101",
		PassingScore: 70,
		ShowResults:  true,
		AllowRetry:   true,
		Questions: []domain.Question{
			domain.SingleChoice{
				Header:  domain.Header{ID: "q1", Text: "Pick b", Points: 1, Explanation: "b is right."},
				Options: []domain.Option{{ID: "a", Text: "A"}, {ID: "b", Text: "B", Correct: true}},
			},
			domain.FillBlank{Header: domain.Header{ID: "q2", Text: "Go is ___", Points: 1}, Accepted: []string{"fast"}},
		},
	}
}

func sampleResult(quiz domain.Quiz, answers domain.Answers) domain.AttemptResult {
	start := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	return domain.AttemptResult{
		ID:          "attempt-1",
		QuizID:      quiz.ID,
		UserID:      "u1",
		Grade:       scoring.Score(quiz, answers),
		Answers:     answers,
		StartedAt:   start,
		CompletedAt: start.Add(90 * time.Second),
	}
}

func TestReportFailedAttemptOffersRetry(t *testing.T) {
	quiz := sampleQuiz()
	result := sampleResult(quiz, domain.Answers{"q1": domain.Choice("b")})

	retried := 0
	r := New(quiz, result, Actions{Retry: func() error { retried++; return nil }})
	s := r.Report()

	assert.Equal(t, "Keep Practicing!", s.Headline)
	assert.Equal(t, "You need 70% to pass.", s.Message)
	assert.Equal(t, 50, s.Score)
	assert.Equal(t, 1, s.CorrectCount)
	assert.Equal(t, 2, s.TotalQuestions)
	assert.Equal(t, 90, s.TimeSpentSeconds)
	assert.True(t, s.CanRetry)
	assert.False(t, s.CanExit)
	require.Len(t, s.Review, 2)
	assert.Equal(t, "fast", s.Review[1].CorrectAnswer)

	require.NoError(t, r.Retry())
	assert.Equal(t, 1, retried)
	assert.ErrorIs(t, r.Exit(), domain.ErrNoExitHandler)
}

func TestReportPassedAttemptHidesRetry(t *testing.T) {
	quiz := sampleQuiz()
	quiz.ShowResults = false
	result := sampleResult(quiz, domain.Answers{"q1": domain.Choice("b"), "q2": domain.Text("Fast")})

	exited := false
	r := New(quiz, result, Actions{
		Retry: func() error { t.Fatal("retry must not run"); return nil },
		Exit:  func() error { exited = true; return nil },
	})
	s := r.Report()

	assert.Equal(t, "Congratulations!", s.Headline)
	assert.Equal(t, "You passed the quiz!", s.Message)
	assert.False(t, s.CanRetry)
	assert.True(t, s.CanExit)
	assert.Empty(t, s.Review)

	assert.True(t, errors.Is(r.Retry(), domain.ErrRetryNotAllowed))
	require.NoError(t, r.Exit())
	assert.True(t, exited)
}

func TestRetryDisabledByPolicy(t *testing.T) {
	quiz := sampleQuiz()
	quiz.AllowRetry = false
	r := New(quiz, sampleResult(quiz, domain.Answers{}), Actions{Retry: func() error { return nil }})
	assert.False(t, r.Report().CanRetry)
	assert.ErrorIs(t, r.Retry(), domain.ErrRetryNotAllowed)
}

func TestWritePDF(t *testing.T) {
	quiz := sampleQuiz()
	r := New(quiz, sampleResult(quiz, domain.Answers{"q1": domain.Choice("a")}), Actions{})

	var buf bytes.Buffer
	require.NoError(t, r.WritePDF(&buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWriteAttemptsXLSX(t *testing.T) {
	quiz := sampleQuiz()
	attempts := []domain.AttemptResult{
		sampleResult(quiz, domain.Answers{"q1": domain.Choice("b"), "q2": domain.Text("=cmd()")}),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteAttemptsXLSX(&buf, quiz, attempts))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(attemptsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Attempt", rows[0][0])
	assert.Equal(t, "q2", rows[0][len(rows[0])-1])
	assert.Equal(t, "attempt-1", rows[1][0])
	assert.Equal(t, "50", rows[1][2])
	assert.Equal(t, "'=cmd()", rows[1][len(rows[1])-1])
}
