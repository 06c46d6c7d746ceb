// Package report presents a scored attempt and gates the retry and exit actions.
// It never persists anything.
package report

import (
	"fmt"

	"assessment-engine/internal/domain"
	"assessment-engine/internal/render"
)

const (
	headlinePassed = "Congratulations!"
	headlineFailed = "Keep Practicing!"
	messagePassed  = "You passed the quiz!"
)

// Actions are the caller-supplied handlers behind the results screen. Either
// may be nil, which hides the corresponding action.
type Actions struct {
	Retry func() error
	Exit  func() error
}

// Summary is the results screen.
type Summary struct {
	AttemptID        string                `json:"attemptId"`
	QuizID           string                `json:"quizId"`
	QuizTitle        string                `json:"quizTitle"`
	Headline         string                `json:"headline"`
	Message          string                `json:"message"`
	Passed           bool                  `json:"passed"`
	Score            int                   `json:"score"`
	PassingScore     int                   `json:"passingScore"`
	CorrectCount     int                   `json:"correctCount"`
	TotalQuestions   int                   `json:"totalQuestions"`
	CorrectPoints    int                   `json:"correctPoints"`
	TotalPoints      int                   `json:"totalPoints"`
	TimeSpentSeconds int                   `json:"timeSpentSeconds"`
	CanRetry         bool                  `json:"canRetry"`
	CanExit          bool                  `json:"canExit"`
	Review           []render.QuestionView `json:"review,omitempty"`
}

// Reporter wraps one attempt result.
type Reporter struct {
	quiz    domain.Quiz
	result  domain.AttemptResult
	actions Actions
}

func New(quiz domain.Quiz, result domain.AttemptResult, actions Actions) *Reporter {
	return &Reporter{quiz: quiz, result: result, actions: actions}
}

// CanRetry is true only for failed attempts at quizzes allowing retries.
func (r *Reporter) CanRetry() bool {
	return r.quiz.AllowRetry && !r.result.Passed && r.actions.Retry != nil
}

// CanExit is true whenever an exit handler was supplied.
func (r *Reporter) CanExit() bool {
	return r.actions.Exit != nil
}

// Report builds the results screen. The per-question review is included
// only when the quiz shows results.
func (r *Reporter) Report() Summary {
	s := Summary{
		AttemptID:        r.result.ID,
		QuizID:           r.quiz.ID,
		QuizTitle:        r.quiz.Title,
		Headline:         headlineFailed,
		Message:          fmt.Sprintf("You need %d%% to pass.", r.quiz.PassingScore),
		Passed:           r.result.Passed,
		Score:            r.result.Score,
		PassingScore:     r.quiz.PassingScore,
		CorrectCount:     r.result.CorrectCount,
		TotalQuestions:   r.result.TotalQuestions,
		CorrectPoints:    r.result.CorrectPoints,
		TotalPoints:      r.result.TotalPoints,
		TimeSpentSeconds: int(r.result.TimeSpent().Seconds()),
		CanRetry:         r.CanRetry(),
		CanExit:          r.CanExit(),
	}
	if r.result.Passed {
		s.Headline = headlinePassed
		s.Message = messagePassed
	}
	if r.quiz.ShowResults {
		s.Review = r.review()
	}
	return s
}

// Retry invokes the retry handler when retrying is allowed.
func (r *Reporter) Retry() error {
	if !r.CanRetry() {
		return domain.ErrRetryNotAllowed
	}
	return r.actions.Retry()
}

// Exit notifies the exit handler.
func (r *Reporter) Exit() error {
	if !r.CanExit() {
		return domain.ErrNoExitHandler
	}
	return r.actions.Exit()
}

func (r *Reporter) review() []render.QuestionView {
	views := make([]render.QuestionView, 0, len(r.quiz.Questions))
	for _, q := range r.quiz.Questions {
		views = append(views, render.Question(q, r.result.Answers[q.Head().ID], true))
	}
	return views
}
