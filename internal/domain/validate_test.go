package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateReportsEveryProblem(t *testing.T) {
	quiz := Quiz{
		ID:           "broken",
		PassingScore: 120,
		Questions: []Question{
			SingleChoice{Header: Header{ID: "q1", Points: 0}},
			SingleChoice{Header: Header{ID: "q1", Points: 1}, Options: []Option{{ID: "a"}}},
			MultipleChoice{Header: Header{ID: "q3", Points: 1}, Options: []Option{{ID: "a"}, {ID: "a", Correct: true}}},
			FillBlank{Header: Header{ID: "q4", Text: "no blank here", Points: 1}, Accepted: []string{"  "}},
		},
	}

	err := quiz.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidQuiz))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "broken", verr.QuizID)
	assert.Contains(t, verr.Problems, "passing score 120 outside 0-100")
	assert.Contains(t, verr.Problems, `question "q1": points must be > 0, got 0`)
	assert.Contains(t, verr.Problems, `question "q1": choice question has no options`)
	assert.Contains(t, verr.Problems, `duplicate question id "q1"`)
	assert.Contains(t, verr.Problems, `question "q1": no option marked correct`)
	assert.Contains(t, verr.Problems, `question "q3": duplicate option id "a"`)
	assert.Contains(t, verr.Problems, `question "q4": prompt must contain exactly one ___ blank, found 0`)
	assert.Contains(t, verr.Problems, `question "q4": no accepted answer`)
}

func TestValidateRejectsEmptyQuiz(t *testing.T) {
	err := Quiz{ID: "empty"}.Validate()
	assert.ErrorIs(t, err, ErrInvalidQuiz)
}

func TestAttemptHistorySummary(t *testing.T) {
	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	h := NewAttemptHistory([]AttemptResult{
		{ID: "a1", Grade: Grade{Score: 40}, CompletedAt: base},
		{ID: "a2", Grade: Grade{Score: 80, Passed: true}, CompletedAt: base.Add(time.Hour)},
		{ID: "a3", Grade: Grade{Score: 60}, CompletedAt: base.Add(2 * time.Hour)},
	})

	require.NotNil(t, h.BestScore)
	assert.Equal(t, 80, *h.BestScore)
	assert.Equal(t, 3, h.AttemptCount)
	assert.True(t, h.HasPassed)
	assert.Equal(t, "a3", h.Attempts[0].ID)

	empty := NewAttemptHistory(nil)
	assert.Nil(t, empty.BestScore)
	assert.False(t, empty.HasPassed)
}
