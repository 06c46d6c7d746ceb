package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSessionNotFound is returned when an attempt session is unknown or already discarded.
	ErrSessionNotFound = errors.New("attempt session not found")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrAttemptNotFound indicates a recorded attempt does not exist.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrQuestionNotFound indicates a submitted question ID is not part of the quiz.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionNotFound indicates a selected option ID is not part of the question.
	ErrOptionNotFound = errors.New("option not found")
	// ErrNotChoiceQuestion is returned when selecting an option on a free-text question.
	ErrNotChoiceQuestion = errors.New("question does not take option selections")
	// ErrAttemptSubmitted is returned for any mutation after the attempt was submitted.
	ErrAttemptSubmitted = errors.New("attempt already submitted")
	// ErrAttemptInProgress is returned when an action needs a submitted attempt.
	ErrAttemptInProgress = errors.New("attempt still in progress")
	// ErrRetryNotAllowed is returned when the quiz policy or the result forbids a retry.
	ErrRetryNotAllowed = errors.New("retry not allowed")
	// ErrNoExitHandler is returned when exit is requested but nobody listens for it.
	ErrNoExitHandler = errors.New("no exit handler")
	// ErrAlreadyPassed is returned when starting a non-retryable quiz the user already passed.
	ErrAlreadyPassed = errors.New("quiz already passed")
	// ErrInvalidQuiz is the root of every quiz configuration error.
	ErrInvalidQuiz = errors.New("invalid quiz")
	// ErrUnsupportedQuestionType marks reserved or unknown question types.
	ErrUnsupportedQuestionType = errors.New("unsupported question type")
)

// ValidationError lists every configuration problem found in a quiz.
type ValidationError struct {
	QuizID   string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid quiz %q: %s", e.QuizID, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidQuiz
}
