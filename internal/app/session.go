package app

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"assessment-engine/internal/domain"
	"assessment-engine/internal/scoring"
	"github.com/google/uuid"
)

// Phase is the lifecycle state of an attempt session.
type Phase string

const (
	PhaseInProgress Phase = "in_progress"
	PhaseSubmitted  Phase = "submitted"
)

// NavStatus is the navigator state of one question position.
type NavStatus string

const (
	StatusUnanswered NavStatus = "unanswered"
	StatusAnswered   NavStatus = "answered"
	StatusFlagged    NavStatus = "flagged"
)

// Snapshot is a read-only copy of a session's state.
type Snapshot struct {
	SessionID        string                `json:"sessionId"`
	QuizID           string                `json:"quizId"`
	UserID           string                `json:"userId"`
	Phase            Phase                 `json:"phase"`
	Order            []string              `json:"order"`
	CurrentIndex     int                   `json:"currentIndex"`
	Answers          domain.Answers        `json:"answers"`
	Flagged          []string              `json:"flagged"`
	Navigator        []NavStatus           `json:"navigator"`
	AnsweredCount    int                   `json:"answeredCount"`
	Progress         int                   `json:"progress"`
	RemainingSeconds *int                  `json:"remainingSeconds"`
	StartedAt        time.Time             `json:"startedAt"`
	Result           *domain.AttemptResult `json:"result,omitempty"`
}

// CurrentQuestionID returns the id of the question at CurrentIndex.
func (s Snapshot) CurrentQuestionID() string {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Order) {
		return ""
	}
	return s.Order[s.CurrentIndex]
}

// Session is the mutable state of one user's attempt at a quiz.
type Session struct {
	id        string
	userID    string
	quiz      domain.Quiz
	order     []domain.Question
	startedAt time.Time
	opts      sessionOptions

	mu          sync.RWMutex
	answers     domain.Answers
	flagged     map[string]struct{}
	current     int
	phase       Phase
	closed      bool
	remaining   time.Duration
	result      *domain.AttemptResult
	stopTimer   context.CancelFunc
	subscribers map[chan Snapshot]struct{}
}

// NewSession starts an attempt. The question order is drawn once here and
// the countdown starts immediately when the quiz has a time limit.
func NewSession(quiz domain.Quiz, userID string, opts ...Option) *Session {
	o := defaultSessionOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newSession(quiz, userID, o)
}

func newSession(quiz domain.Quiz, userID string, o sessionOptions) *Session {
	s := &Session{
		id:          o.newID(),
		userID:      userID,
		quiz:        quiz,
		order:       questionOrder(quiz, o.rnd),
		startedAt:   o.now(),
		opts:        o,
		answers:     make(domain.Answers),
		flagged:     make(map[string]struct{}),
		phase:       PhaseInProgress,
		remaining:   quiz.TimeLimitDuration(),
		subscribers: make(map[chan Snapshot]struct{}),
	}
	if s.remaining > 0 {
		s.startCountdown()
	}
	return s
}

func questionOrder(quiz domain.Quiz, rnd *rand.Rand) []domain.Question {
	order := append([]domain.Question{}, quiz.Questions...)
	if quiz.ShuffleQuestions && rnd != nil {
		rnd.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}
	return order
}

// ID is also the id of the attempt result produced on submit.
func (s *Session) ID() string { return s.id }

func (s *Session) UserID() string { return s.userID }

func (s *Session) Quiz() domain.Quiz { return s.quiz }

func (s *Session) StartedAt() time.Time { return s.startedAt }

// Current returns the question at the current position.
func (s *Session) Current() domain.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.order[s.current]
}

// Answer returns the recorded response for a question.
func (s *Session) Answer(questionID string) (domain.Response, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.answers[questionID]
	return r, ok
}

// Phase returns the lifecycle phase.
func (s *Session) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// Result returns the attempt result once the session has been submitted.
func (s *Session) Result() (domain.AttemptResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return domain.AttemptResult{}, false
	}
	return *s.result, true
}

// SetAnswer inserts or overwrites the response for a question.
func (s *Session) SetAnswer(questionID string, r domain.Response) error {
	return s.mutate(func() error {
		if _, ok := s.quiz.Question(questionID); !ok {
			return domain.ErrQuestionNotFound
		}
		s.answers[questionID] = r.Clone()
		return nil
	})
}

// Select picks an option: multi-select questions toggle membership, single
// choice and true/false replace the previous selection.
func (s *Session) Select(questionID, optionID string) error {
	return s.mutate(func() error {
		q, ok := s.quiz.Question(questionID)
		if !ok {
			return domain.ErrQuestionNotFound
		}

		switch q.(type) {
		case domain.SingleChoice, domain.TrueFalse:
			if !domain.HasOption(q, optionID) {
				return domain.ErrOptionNotFound
			}
			s.answers[questionID] = domain.Choice(optionID)
		case domain.MultipleChoice:
			if !domain.HasOption(q, optionID) {
				return domain.ErrOptionNotFound
			}
			current := s.answers[questionID]
			if !current.IsMulti() {
				current = domain.Choices()
			}
			s.answers[questionID] = current.Toggle(optionID)
		default:
			return domain.ErrNotChoiceQuestion
		}
		return nil
	})
}

// ToggleFlag marks or unmarks a question for review and reports the new state.
func (s *Session) ToggleFlag(questionID string) (bool, error) {
	var flagged bool
	err := s.mutate(func() error {
		if _, ok := s.quiz.Question(questionID); !ok {
			return domain.ErrQuestionNotFound
		}
		if _, ok := s.flagged[questionID]; ok {
			delete(s.flagged, questionID)
			return nil
		}
		s.flagged[questionID] = struct{}{}
		flagged = true
		return nil
	})
	return flagged, err
}

// GoTo moves to any position; out-of-range indices are clamped.
func (s *Session) GoTo(index int) (int, error) {
	var current int
	err := s.mutate(func() error {
		s.current = clamp(index, 0, len(s.order)-1)
		current = s.current
		return nil
	})
	if err != nil {
		s.mu.RLock()
		current = s.current
		s.mu.RUnlock()
	}
	return current, err
}

// Next advances one position; a no-op on the last question.
func (s *Session) Next() (int, error) {
	s.mu.RLock()
	target := s.current + 1
	s.mu.RUnlock()
	return s.GoTo(target)
}

// Previous goes back one position; a no-op on the first question.
func (s *Session) Previous() (int, error) {
	s.mu.RLock()
	target := s.current - 1
	s.mu.RUnlock()
	return s.GoTo(target)
}

// Submit scores the attempt and freezes the session. It can succeed only once.
func (s *Session) Submit() (domain.AttemptResult, error) {
	s.mu.Lock()
	if err := s.mutableLocked(); err != nil {
		s.mu.Unlock()
		return domain.AttemptResult{}, err
	}
	result := s.submitLocked()
	s.mu.Unlock()

	s.changed()
	s.complete(result)
	return result, nil
}

// CanRetry reports whether a submitted attempt may start a fresh session.
func (s *Session) CanRetry() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result != nil && s.quiz.AllowRetry && !s.result.Passed
}

// Retry discards this session and starts a new attempt at the same quiz.
// The new session draws a fresh question order when shuffling is enabled.
func (s *Session) Retry() (*Session, error) {
	s.mu.RLock()
	submitted := s.phase == PhaseSubmitted
	s.mu.RUnlock()
	if !submitted {
		return nil, domain.ErrAttemptInProgress
	}
	if !s.CanRetry() {
		return nil, domain.ErrRetryNotAllowed
	}
	s.Close()
	return newSession(s.quiz, s.userID, s.opts), nil
}

// Close tears the session down: the countdown stops and subscribers are released.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.stopTimer != nil {
		s.stopTimer()
	}
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel receiving a snapshot on every countdown tick
// and on submit. The caller must invoke the returned cancel function.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	// ch is fresh and buffered; sending under the lock keeps Close from closing it first.
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// mutate applies fn under the write lock when the session still accepts
// changes, then reports the new state to the observer.
func (s *Session) mutate(fn func() error) error {
	s.mu.Lock()
	err := s.mutableLocked()
	if err == nil {
		err = fn()
	}
	s.mu.Unlock()

	if err == nil {
		s.changed()
	}
	return err
}

// changed hands the current snapshot to the observer. Call it without the lock.
func (s *Session) changed() {
	if s.opts.observe != nil {
		s.opts.observe(s.Snapshot())
	}
}

func (s *Session) mutableLocked() error {
	if s.closed {
		return domain.ErrSessionNotFound
	}
	if s.phase != PhaseInProgress {
		return domain.ErrAttemptSubmitted
	}
	return nil
}

func (s *Session) submitLocked() domain.AttemptResult {
	completedAt := s.opts.now()
	if completedAt.Before(s.startedAt) {
		completedAt = s.startedAt
	}
	result := domain.AttemptResult{
		ID:          s.id,
		QuizID:      s.quiz.ID,
		UserID:      s.userID,
		Grade:       scoring.Score(s.quiz, s.answers),
		Answers:     s.answers.Clone(),
		StartedAt:   s.startedAt,
		CompletedAt: completedAt,
	}
	s.phase = PhaseSubmitted
	s.result = &result
	if s.stopTimer != nil {
		s.stopTimer()
	}
	s.broadcastLocked()
	return result
}

func (s *Session) complete(result domain.AttemptResult) {
	if s.opts.onComplete != nil {
		s.opts.onComplete(result)
	}
}

func (s *Session) broadcastLocked() {
	snap := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the stale snapshot so a slow reader never blocks the session.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		SessionID:    s.id,
		QuizID:       s.quiz.ID,
		UserID:       s.userID,
		Phase:        s.phase,
		Order:        make([]string, 0, len(s.order)),
		CurrentIndex: s.current,
		Answers:      s.answers.Clone(),
		Flagged:      make([]string, 0, len(s.flagged)),
		Navigator:    make([]NavStatus, 0, len(s.order)),
		StartedAt:    s.startedAt,
	}
	for _, q := range s.order {
		id := q.Head().ID
		snap.Order = append(snap.Order, id)

		_, answered := s.answers[id]
		_, flagged := s.flagged[id]
		switch {
		case flagged:
			snap.Navigator = append(snap.Navigator, StatusFlagged)
		case answered:
			snap.Navigator = append(snap.Navigator, StatusAnswered)
		default:
			snap.Navigator = append(snap.Navigator, StatusUnanswered)
		}
		if answered {
			snap.AnsweredCount++
		}
	}
	for id := range s.flagged {
		snap.Flagged = append(snap.Flagged, id)
	}
	sort.Strings(snap.Flagged)
	snap.Progress = scoring.Percent(snap.AnsweredCount, len(s.order))

	if s.quiz.TimeLimit > 0 {
		secs := int(s.remaining / time.Second)
		snap.RemainingSeconds = &secs
	}
	if s.result != nil {
		result := *s.result
		snap.Result = &result
	}
	return snap
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func newAttemptID() string {
	return uuid.NewString()
}
