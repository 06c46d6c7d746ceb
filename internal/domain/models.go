package domain

import (
	"sort"
	"time"
)

// Quiz is an immutable definition of questions plus session policy.
type Quiz struct {
	ID          string
	Title       string
	Description string
	// TimeLimit is in minutes; zero means untimed.
	TimeLimit int
	// PassingScore is the percentage (0-100) an attempt must reach.
	PassingScore     int
	ShuffleQuestions bool
	ShowResults      bool
	AllowRetry       bool
	Questions        []Question
}

// Question looks a question up by id.
func (q Quiz) Question(id string) (Question, bool) {
	for _, question := range q.Questions {
		if question.Head().ID == id {
			return question, true
		}
	}
	return nil, false
}

// TotalPoints sums the points of every question, ungraded ones included.
func (q Quiz) TotalPoints() int {
	total := 0
	for _, question := range q.Questions {
		total += question.Head().Points
	}
	return total
}

// TimeLimitDuration converts the time limit to a duration (zero when untimed).
func (q Quiz) TimeLimitDuration() time.Duration {
	if q.TimeLimit <= 0 {
		return 0
	}
	return time.Duration(q.TimeLimit) * time.Minute
}

// Outcome is the graded state of a single question.
type Outcome struct {
	QuestionID string  `json:"questionId"`
	Verdict    Verdict `json:"verdict"`
	Points     int     `json:"points"`
	Awarded    int     `json:"awarded"`
}

// Grade is the deterministic part of an attempt result.
type Grade struct {
	Score          int       `json:"score"`
	Passed         bool      `json:"passed"`
	CorrectCount   int       `json:"correctCount"`
	TotalQuestions int       `json:"totalQuestions"`
	CorrectPoints  int       `json:"correctPoints"`
	TotalPoints    int       `json:"totalPoints"`
	Outcomes       []Outcome `json:"outcomes"`
}

// Outcome returns the outcome recorded for a question.
func (g Grade) Outcome(questionID string) (Outcome, bool) {
	for _, o := range g.Outcomes {
		if o.QuestionID == questionID {
			return o, true
		}
	}
	return Outcome{}, false
}

// AttemptResult is the immutable record produced once per submit.
type AttemptResult struct {
	ID     string `json:"id"`
	QuizID string `json:"quizId"`
	UserID string `json:"userId"`
	Grade
	Answers     Answers   `json:"answers"`
	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `json:"completedAt"`
}

// TimeSpent is the wall-clock duration of the attempt.
func (r AttemptResult) TimeSpent() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

// AttemptHistory summarizes a user's attempts at one quiz.
type AttemptHistory struct {
	Attempts     []AttemptResult `json:"attempts"`
	BestScore    *int            `json:"bestScore"`
	AttemptCount int             `json:"attemptCount"`
	HasPassed    bool            `json:"hasPassed"`
}

// NewAttemptHistory orders attempts newest first and computes the summary.
func NewAttemptHistory(attempts []AttemptResult) AttemptHistory {
	sorted := append([]AttemptResult{}, attempts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CompletedAt.After(sorted[j].CompletedAt)
	})

	h := AttemptHistory{Attempts: sorted, AttemptCount: len(sorted)}
	for _, a := range sorted {
		if h.BestScore == nil || a.Score > *h.BestScore {
			best := a.Score
			h.BestScore = &best
		}
		if a.Passed {
			h.HasPassed = true
		}
	}
	return h
}
