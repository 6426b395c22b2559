package services

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"university-rag-assistant/models"
)

type session struct {
	turns      []models.Turn
	lastActive time.Time
}

// SessionStore keeps per-session conversation history in process memory.
// Each session's history is only mutated by requests carrying that session's
// id; the store itself is safe for concurrent use. Only the most recent
// maxHistoryPairs turn-pairs are retained, older turns are dropped.
type SessionStore struct {
	mu              sync.RWMutex
	sessions        map[string]*session
	maxHistoryPairs int
}

// NewSessionStore creates an empty session store retaining at most
// maxHistoryPairs turn-pairs per session.
func NewSessionStore(maxHistoryPairs int) *SessionStore {
	if maxHistoryPairs <= 0 {
		maxHistoryPairs = 5
	}
	return &SessionStore{
		sessions:        make(map[string]*session),
		maxHistoryPairs: maxHistoryPairs,
	}
}

// Create registers a new session and returns its id.
func (ss *SessionStore) Create() string {
	id := uuid.NewString()
	ss.mu.Lock()
	ss.sessions[id] = &session{lastActive: time.Now()}
	ss.mu.Unlock()
	return id
}

// History returns a copy of the retained turns for a session, oldest first.
// An unknown session has empty history; it is created on first contact by
// AppendExchange, not here.
func (ss *SessionStore) History(id string) []models.Turn {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	s, ok := ss.sessions[id]
	if !ok {
		return nil
	}
	out := make([]models.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// AppendExchange records a user message and the assistant's reply, creating
// the session on first contact and trimming history to the retention window.
func (ss *SessionStore) AppendExchange(id, userMessage, reply string) {
	now := time.Now()

	ss.mu.Lock()
	defer ss.mu.Unlock()

	s, ok := ss.sessions[id]
	if !ok {
		s = &session{}
		ss.sessions[id] = s
	}
	s.turns = append(s.turns,
		models.Turn{Role: "user", Content: userMessage, Timestamp: now},
		models.Turn{Role: "assistant", Content: reply, Timestamp: now},
	)
	if keep := ss.maxHistoryPairs * 2; len(s.turns) > keep {
		s.turns = append([]models.Turn(nil), s.turns[len(s.turns)-keep:]...)
	}
	s.lastActive = now
}

// Clear removes a session and its history. Clearing an unknown id is a no-op.
func (ss *SessionStore) Clear(id string) {
	ss.mu.Lock()
	delete(ss.sessions, id)
	ss.mu.Unlock()
}

// Len returns the number of live sessions.
func (ss *SessionStore) Len() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.sessions)
}

// EvictIdle removes sessions that have been inactive for longer than ttl and
// returns how many were evicted. Called by the optional scheduled sweeper.
func (ss *SessionStore) EvictIdle(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	ss.mu.Lock()
	defer ss.mu.Unlock()

	evicted := 0
	for id, s := range ss.sessions {
		if s.lastActive.Before(cutoff) {
			delete(ss.sessions, id)
			evicted++
		}
	}
	return evicted
}
