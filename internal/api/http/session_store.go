package http

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kevin07696/checkout-service/internal/services/checkout"
	"github.com/kevin07696/checkout-service/pkg/observability"
)

// Session binds one checkout orchestrator to an API-visible id
type Session struct {
	ID           string
	Orchestrator *checkout.Orchestrator
	CreatedAt    time.Time
}

// OrchestratorFactory builds a fresh orchestrator (with fresh method
// handlers and authorization gates) for each session
type OrchestratorFactory func() *checkout.Orchestrator

// SessionStore holds live checkout sessions in memory. Sessions are cheap;
// abandoning one leaks nothing but a map entry until Delete.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	factory  OrchestratorFactory
}

// NewSessionStore creates an empty store
func NewSessionStore(factory OrchestratorFactory) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		factory:  factory,
	}
}

// Create opens a new session with a fresh orchestrator
func (s *SessionStore) Create() *Session {
	session := &Session{
		ID:           uuid.New().String(),
		Orchestrator: s.factory(),
		CreatedAt:    time.Now(),
	}
	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	observability.SessionOpened()
	return session
}

// Get returns the session with the given id, or nil
func (s *SessionStore) Get(id string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[id]
}

// Delete closes a session
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	_, existed := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if existed {
		observability.SessionClosed()
	}
}

// Len returns the number of open sessions
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
