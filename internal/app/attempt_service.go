package app

import (
	"context"
	"log"
	"time"

	"assessment-engine/internal/domain"
)

// SessionRepository abstracts where live attempt sessions are kept (in-memory, Redis, etc).
type SessionRepository interface {
	Save(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// SessionObserver is implemented by session repositories that mirror live
// attempt state outside the process. Observe receives every accepted change.
type SessionObserver interface {
	Observe(snap Snapshot)
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// AttemptRepository durably records submitted attempts. ListAttempts with an
// empty userID returns the attempts of every user.
type AttemptRepository interface {
	RecordAttempt(ctx context.Context, result domain.AttemptResult) error
	ListAttempts(ctx context.Context, quizID, userID string) ([]domain.AttemptResult, error)
	GetAttempt(ctx context.Context, attemptID string) (domain.AttemptResult, error)
}

const recordTimeout = 5 * time.Second

// AttemptService contains the attempt use cases: start, submit, retry, exit and history.
type AttemptService struct {
	sessions SessionRepository
	quizzes  QuizRepository
	attempts AttemptRepository
	opts     []Option
}

// NewAttemptService wires the repositories. opts are applied to every session
// the service starts; the completion hook is always the attempt recorder, and
// session repositories implementing SessionObserver are kept up to date.
func NewAttemptService(sessions SessionRepository, quizzes QuizRepository, attempts AttemptRepository, opts ...Option) *AttemptService {
	return &AttemptService{sessions: sessions, quizzes: quizzes, attempts: attempts, opts: opts}
}

// Quiz returns a validated quiz definition.
func (s *AttemptService) Quiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if err := quiz.Validate(); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// Start begins a new attempt for userID. Quizzes that forbid retries cannot
// be started again once the user has passed them.
func (s *AttemptService) Start(ctx context.Context, quizID, userID string) (*Session, error) {
	quiz, err := s.Quiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	if !quiz.AllowRetry {
		history, err := s.History(ctx, quizID, userID)
		if err != nil {
			return nil, err
		}
		if history.HasPassed {
			return nil, domain.ErrAlreadyPassed
		}
	}

	session := NewSession(quiz, userID, s.sessionOptions()...)
	s.sessions.Save(session)
	log.Printf("attempt %s started: quiz=%s user=%s questions=%d", session.ID(), quizID, userID, len(quiz.Questions))
	return session, nil
}

// Session returns a live session by id.
func (s *AttemptService) Session(sessionID string) (*Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Submit scores the session. The attempt is recorded through the completion hook.
func (s *AttemptService) Submit(_ context.Context, sessionID string) (domain.AttemptResult, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return domain.AttemptResult{}, err
	}
	return session.Submit()
}

// Retry discards a failed, submitted session and starts a fresh one.
func (s *AttemptService) Retry(_ context.Context, sessionID string) (*Session, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return nil, err
	}
	next, err := session.Retry()
	if err != nil {
		return nil, err
	}
	s.sessions.Delete(sessionID)
	s.sessions.Save(next)
	log.Printf("attempt %s retried as %s", sessionID, next.ID())
	return next, nil
}

// Exit tears the session down. Unknown sessions are ignored.
func (s *AttemptService) Exit(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.Close()
	s.sessions.Delete(sessionID)
}

// History summarizes a user's recorded attempts at a quiz.
func (s *AttemptService) History(ctx context.Context, quizID, userID string) (domain.AttemptHistory, error) {
	attempts, err := s.attempts.ListAttempts(ctx, quizID, userID)
	if err != nil {
		return domain.AttemptHistory{}, err
	}
	return domain.NewAttemptHistory(attempts), nil
}

// Attempts lists every recorded attempt at a quiz, across users.
func (s *AttemptService) Attempts(ctx context.Context, quizID string) ([]domain.AttemptResult, error) {
	return s.attempts.ListAttempts(ctx, quizID, "")
}

// Attempt returns one recorded attempt.
func (s *AttemptService) Attempt(ctx context.Context, attemptID string) (domain.AttemptResult, error) {
	return s.attempts.GetAttempt(ctx, attemptID)
}

func (s *AttemptService) sessionOptions() []Option {
	opts := make([]Option, 0, len(s.opts)+2)
	opts = append(opts, s.opts...)
	if observer, ok := s.sessions.(SessionObserver); ok {
		opts = append(opts, WithObserver(observer.Observe))
	}
	return append(opts, WithCompletion(s.record))
}

// record is the completion hook. Persistence failures are logged and never
// undo the submit.
func (s *AttemptService) record(result domain.AttemptResult) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := s.attempts.RecordAttempt(ctx, result); err != nil {
		log.Printf("record attempt %s failed: %v", result.ID, err)
		return
	}
	log.Printf("attempt %s submitted: quiz=%s user=%s score=%d passed=%t", result.ID, result.QuizID, result.UserID, result.Score, result.Passed)
}
