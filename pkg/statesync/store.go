package statesync

import (
	"context"
	"sync"
)

// Store is a keyed record of sessions
// Writes replace the whole record; the last writer wins.
type Store interface {
	// Load returns ErrNoSession if nothing is stored for the instance
	Load(ctx context.Context, instanceID string) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, instanceID string) error
}

// MemoryStore keeps encoded sessions in a process-wide map
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

// NewMemoryStore returns an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string][]byte),
	}
}

// Load decodes the stored session
func (m *MemoryStore) Load(_ context.Context, instanceID string) (*Session, error) {
	m.mu.RLock()
	b, ok := m.sessions[instanceID]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNoSession
	}

	return DecodeSession(b)
}

// Save encodes and stores the session
func (m *MemoryStore) Save(_ context.Context, session *Session) error {
	b, err := session.Encode()
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.sessions[session.InstanceID] = b
	m.mu.Unlock()

	return nil
}

// Delete removes the session
func (m *MemoryStore) Delete(_ context.Context, instanceID string) error {
	m.mu.Lock()
	delete(m.sessions, instanceID)
	m.mu.Unlock()

	return nil
}
