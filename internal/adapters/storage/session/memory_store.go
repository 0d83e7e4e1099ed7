package session

import (
	"context"
	"sync"
	"time"

	domain "meetup/internal/domain/session"
)

// MemoryStore is an in-process Store. Sessions are lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]domain.Session),
		now:      time.Now,
	}
}

// Create stores a new session and returns its token.
// PRE: s.ExpiresAt is in the future
// POST: The session is retrievable by the returned token until it expires
func (m *MemoryStore) Create(_ context.Context, s domain.Session) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = s
	return token, nil
}

// Get returns the live session for token or domain.ErrNotFound.
func (m *MemoryStore) Get(_ context.Context, token string) (domain.Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[token]
	m.mu.RUnlock()
	if !ok {
		return domain.Session{}, domain.ErrNotFound
	}
	if s.Expired(m.now()) {
		m.mu.Lock()
		delete(m.sessions, token)
		m.mu.Unlock()
		return domain.Session{}, domain.ErrNotFound
	}
	return s, nil
}

// Update replaces the session stored under token.
// PRE: token exists in the store
// POST: The session is replaced, or domain.ErrNotFound is returned
func (m *MemoryStore) Update(_ context.Context, token string, s domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[token]; !ok {
		return domain.ErrNotFound
	}
	m.sessions[token] = s
	return nil
}

// Delete removes the session. Deleting an unknown token is not an error.
func (m *MemoryStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}
