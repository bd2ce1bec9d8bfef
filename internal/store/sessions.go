// Package store holds the process-wide session and leaderboard aggregates.
package store

import "partyhub/internal/domain"

// SessionStore maps conversation ids to their single active session. All
// access happens on the engine's event-processing goroutine, so the map
// carries no lock of its own; a session is present here if and only if its
// phase is not finished.
type SessionStore struct {
	sessions map[string]*domain.Session
}

// NewSessionStore builds an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*domain.Session)}
}

// Create registers a session, rejecting the call when the conversation
// already hosts one.
func (st *SessionStore) Create(s *domain.Session) error {
	if _, exists := st.sessions[s.ConversationID]; exists {
		return domain.ErrAlreadyRunning
	}
	st.sessions[s.ConversationID] = s
	return nil
}

// Get returns the session for a conversation, if any.
func (st *SessionStore) Get(conversationID string) (*domain.Session, bool) {
	s, ok := st.sessions[conversationID]
	return s, ok
}

// Remove drops the session for a conversation. Removing an absent entry is a
// no-op.
func (st *SessionStore) Remove(conversationID string) {
	delete(st.sessions, conversationID)
}

// Len reports how many sessions are live.
func (st *SessionStore) Len() int {
	return len(st.sessions)
}
