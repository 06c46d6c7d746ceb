package redis

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"assessment-engine/internal/app"
	"github.com/redis/go-redis/v9"
)

const observeTimeout = 2 * time.Second

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Live sessions stay in a local map; their countdowns and subscribers are
//     process-bound.
//   - Redis holds a liveness marker per attempt carrying its latest snapshot.
//     The store implements app.SessionObserver, so every answer, navigation
//     step, countdown tick and submit rewrites the marker and renews its TTL.
//     Other instances and operators read it through Snapshot.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Save(session *app.Session) {
	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()
	s.Touch(context.Background(), session)
}

// Touch refreshes the liveness marker with the session's current snapshot.
func (s *SessionStore) Touch(ctx context.Context, session *app.Session) {
	s.publish(ctx, session.Snapshot())
}

// Observe mirrors a change of a session held by this store. Snapshots of
// sessions already deleted are ignored so a late tick cannot revive a marker.
func (s *SessionStore) Observe(snap app.Snapshot) {
	s.mu.RLock()
	_, live := s.sessions[snap.SessionID]
	s.mu.RUnlock()
	if !live {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), observeTimeout)
	defer cancel()
	s.publish(ctx, snap)
}

func (s *SessionStore) publish(ctx context.Context, snap app.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	// best-effort liveness marker
	if err := s.client.Set(ctx, s.key(snap.SessionID), data, s.ttl).Err(); err != nil {
		log.Printf("publish session %s: %v", snap.SessionID, err)
	}
}

func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	return session, ok
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	_ = s.client.Del(context.Background(), s.key(sessionID)).Err()
}

// Snapshot reads the last published snapshot of any attempt, including ones
// owned by other instances.
func (s *SessionStore) Snapshot(ctx context.Context, sessionID string) (app.Snapshot, error) {
	var snap app.Snapshot
	data, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		return snap, err
	}
	err = json.Unmarshal(data, &snap)
	return snap, err
}

func (s *SessionStore) key(sessionID string) string {
	return "attempt:session:" + sessionID
}
