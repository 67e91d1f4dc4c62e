// Package chat owns the conversation state and the dialogue turn
// controller. State is strictly session-scoped: every conversation gets
// its own keyed entry with an idle TTL, never a process-wide history.
package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/moodflick/backend/internal/model/chat"
)

// Store keeps live sessions in memory, keyed by id, and expires the ones
// that go idle.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*chat.Session
	ttl      time.Duration
	done     chan struct{}
	closed   sync.Once
}

// NewStore builds a session store sweeping idle sessions after ttl.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	s := &Store{
		sessions: make(map[string]*chat.Session),
		ttl:      ttl,
		done:     make(chan struct{}),
	}
	go s.sweep()
	return s
}

// GetOrCreate returns the session for id, or a fresh one when id is
// empty or unknown (expired sessions fall in the second bucket, which
// keeps old clients working at the cost of a restarted conversation).
func (s *Store) GetOrCreate(id string) *chat.Session {
	if id != "" {
		s.mu.RLock()
		sess, ok := s.sessions[id]
		s.mu.RUnlock()
		if ok {
			return sess
		}
	}

	now := time.Now().UTC()
	sess := &chat.Session{
		ID:         uuid.NewString(),
		CreatedAt:  now,
		LastActive: now,
		History:    make([]chat.Message, 0, 16),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close stops the sweeper.
func (s *Store) Close() {
	s.closed.Do(func() { close(s.done) })
}

func (s *Store) sweep() {
	ticker := time.NewTicker(s.ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.expire(now.UTC())
		}
	}
}

func (s *Store) expire(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.Expired(now, s.ttl) {
			delete(s.sessions, id)
		}
	}
}
