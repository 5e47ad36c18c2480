package conversation

import (
	"strings"
	"sync"
	"time"

	"docqa/internal/domain"
)

// Store keeps a bounded message history per session. Each session holds
// at most maxHistory messages; older ones fall off the front. Sessions
// whose oldest message outlives maxAge are dropped wholesale by Prune.
type Store struct {
	mu         sync.RWMutex
	sessions   map[string]*session
	maxHistory int
	maxAge     time.Duration
}

type session struct {
	messages []entry
}

type entry struct {
	msg     domain.Message
	addedAt time.Time
}

// NewStore creates a store. Non-positive arguments fall back to
// 10 messages / 1 hour.
func NewStore(maxHistory int, maxAge time.Duration) *Store {
	if maxHistory <= 0 {
		maxHistory = 10
	}
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Store{
		sessions:   make(map[string]*session),
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// Append records a message for the session, creating the session on
// first use and evicting the oldest message at capacity.
func (s *Store) Append(sessionID string, msg domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{}
		s.sessions[sessionID] = sess
	}

	sess.messages = append(sess.messages, entry{msg: msg, addedAt: time.Now()})
	if len(sess.messages) > s.maxHistory {
		sess.messages = sess.messages[len(sess.messages)-s.maxHistory:]
	}
}

// History returns the session's messages oldest first. Unknown sessions
// return an empty history.
func (s *Store) History(sessionID string) []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	out := make([]domain.Message, len(sess.messages))
	for i, e := range sess.messages {
		out[i] = e.msg
	}
	return out
}

// Summary renders the session history as alternating Human/AI lines for
// prompt assembly. Empty for unknown sessions.
func (s *Store) Summary(sessionID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok || len(sess.messages) == 0 {
		return ""
	}

	var b strings.Builder
	for _, e := range sess.messages {
		switch e.msg.Role {
		case domain.RoleUser:
			b.WriteString("Human: ")
		case domain.RoleAssistant:
			b.WriteString("AI: ")
		}
		b.WriteString(e.msg.Content)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// Clear removes the session and reports whether it existed.
func (s *Store) Clear(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	return ok
}

// Prune drops every session whose oldest message is older than the
// configured maximum age, and returns how many were removed.
func (s *Store) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.maxAge)
	removed := 0
	for id, sess := range s.sessions {
		if len(sess.messages) == 0 || sess.messages[0].addedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
