package app

import (
	"context"
	"math/rand"
	"time"

	"assessment-engine/internal/domain"
)

// TickFunc starts a tick source firing every interval. The returned stop
// function releases it.
type TickFunc func(interval time.Duration) (<-chan time.Time, func())

// Option configures a Session.
type Option func(*sessionOptions)

type sessionOptions struct {
	now        func() time.Time
	rnd        *rand.Rand
	interval   time.Duration
	ticks      TickFunc
	onComplete func(domain.AttemptResult)
	observe    func(Snapshot)
	newID      func() string
}

func defaultSessionOptions() sessionOptions {
	return sessionOptions{
		now:      time.Now,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		interval: time.Second,
		ticks:    RealTicker,
		newID:    newAttemptID,
	}
}

// RealTicker is the default tick source, backed by time.Ticker.
func RealTicker(interval time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(interval)
	return t.C, t.Stop
}

// WithClock overrides time.Now for deterministic timestamps in tests.
func WithClock(now func() time.Time) Option {
	return func(o *sessionOptions) { o.now = now }
}

// WithRand sets the random source used to shuffle questions.
func WithRand(rnd *rand.Rand) Option {
	return func(o *sessionOptions) { o.rnd = rnd }
}

// WithTicker replaces the countdown tick source. Each tick consumes interval
// of the remaining time.
func WithTicker(interval time.Duration, ticks TickFunc) Option {
	return func(o *sessionOptions) {
		o.interval = interval
		o.ticks = ticks
	}
}

// WithTickInterval keeps the real ticker but changes how often it fires.
func WithTickInterval(interval time.Duration) Option {
	return WithTicker(interval, RealTicker)
}

// WithObserver registers a callback receiving a snapshot after every accepted
// change: answers, flags, navigation, countdown ticks and submit. It runs on
// the goroutine that made the change, without the session lock.
func WithObserver(fn func(Snapshot)) Option {
	return func(o *sessionOptions) { o.observe = fn }
}

// WithCompletion registers a callback invoked exactly once per submitted
// attempt, whether submitted by the user or by the countdown.
func WithCompletion(fn func(domain.AttemptResult)) Option {
	return func(o *sessionOptions) { o.onComplete = fn }
}

// WithIDGenerator overrides how attempt ids are generated.
func WithIDGenerator(fn func() string) Option {
	return func(o *sessionOptions) { o.newID = fn }
}

func (s *Session) startCountdown() {
	ctx, cancel := context.WithCancel(context.Background())
	s.stopTimer = cancel
	ticks, stop := s.opts.ticks(s.opts.interval)
	go s.runCountdown(ctx, ticks, stop)
}

func (s *Session) runCountdown(ctx context.Context, ticks <-chan time.Time, stop func()) {
	defer stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			if expired := s.tick(); expired {
				return
			}
		}
	}
}

// tick consumes one interval and auto-submits when time runs out. It reports
// whether the countdown is finished.
func (s *Session) tick() bool {
	s.mu.Lock()
	if s.closed || s.phase != PhaseInProgress {
		s.mu.Unlock()
		return true
	}
	s.remaining -= s.opts.interval
	if s.remaining > 0 {
		s.broadcastLocked()
		s.mu.Unlock()
		s.changed()
		return false
	}
	s.remaining = 0
	result := s.submitLocked()
	s.mu.Unlock()

	s.changed()
	s.complete(result)
	return true
}
