package chat

import (
	"sync"
	"time"
)

// Session holds the per-conversation state the turn controller needs:
// the accumulated transcript and the titles of the movies most recently
// recommended, for referent resolution in follow-up turns.
type Session struct {
	mu sync.Mutex

	ID              string    `json:"id"`
	CreatedAt       time.Time `json:"createdAt"`
	LastActive      time.Time `json:"lastActive"`
	History         []Message `json:"history"`
	TurnIndex       int       `json:"turnIndex"`
	LastRecommended []string  `json:"lastRecommended"`
}

// Lock serializes turn handling for a single session. Concurrent
// requests for different sessions proceed independently.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// Append adds a turn to the transcript and refreshes the activity stamp.
func (s *Session) Append(role, content string) {
	s.History = append(s.History, Message{Role: role, Content: content})
	s.LastActive = time.Now().UTC()
}

// Expired reports whether the session has been idle longer than ttl.
// Safe to call without holding the session lock.
func (s *Session) Expired(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.LastActive) > ttl
}

// Window returns up to the last n turns of the transcript.
func (s *Session) Window(n int) []Message {
	if n < 1 || len(s.History) <= n {
		return s.History
	}
	return s.History[len(s.History)-n:]
}
