package session

import (
	"context"
	"sync"
	"time"
)

// MemoryRegistry is the in-process [Registry] implementation. Expired
// sessions are purged lazily on read paths rather than by a background
// sweeper, so an idle registry holds stale entries until the next access.
type MemoryRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewMemoryRegistry creates an empty in-process registry.
func NewMemoryRegistry() *MemoryRegistry {
	return NewMemoryRegistryWithClock(time.Now)
}

// NewMemoryRegistryWithClock is like [NewMemoryRegistry] but reads time from
// now, so callers can drive expiry deterministically.
func NewMemoryRegistryWithClock(now func() time.Time) *MemoryRegistry {
	return &MemoryRegistry{
		sessions: map[string]*Session{},
		now:      now,
	}
}

// Put describes the put operation and its observable behavior.
func (m *MemoryRegistry) Put(_ context.Context, s *Session, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Token] = s.Clone()
	return nil
}

// Get describes the get operation and its observable behavior.
func (m *MemoryRegistry) Get(_ context.Context, token string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[token]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	if s.Expired(m.now().Unix()) {
		m.mu.Lock()
		// Re-check under the write lock; Refresh may have raced us.
		if cur, ok := m.sessions[token]; ok && cur.Expired(m.now().Unix()) {
			delete(m.sessions, token)
		}
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	return s.Clone(), nil
}

// Refresh describes the refresh operation and its observable behavior.
func (m *MemoryRegistry) Refresh(_ context.Context, token string, ttl time.Duration) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok {
		return nil, ErrNotFound
	}

	now := m.now()
	if s.Expired(now.Unix()) {
		delete(m.sessions, token)
		return nil, ErrNotFound
	}

	s.LastActivity = now.Unix()
	s.ExpiresAt = now.Add(ttl).Unix()
	return s.Clone(), nil
}

// Remove describes the remove operation and its observable behavior.
func (m *MemoryRegistry) Remove(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

// Active describes the active operation and its observable behavior.
func (m *MemoryRegistry) Active(_ context.Context) ([]*Session, error) {
	nowUnix := m.now().Unix()

	m.mu.Lock()
	defer m.mu.Unlock()

	active := make([]*Session, 0, len(m.sessions))
	for token, s := range m.sessions {
		if s.Expired(nowUnix) {
			delete(m.sessions, token)
			continue
		}
		active = append(active, s.Clone())
	}
	return active, nil
}

// Len describes the len operation and its observable behavior.
func (m *MemoryRegistry) Len(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions), nil
}
