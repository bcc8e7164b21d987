package session

import (
	"context"
	"sync"
)

type MemoryBackend struct {
	mu    sync.RWMutex
	items map[string]Session
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{items: make(map[string]Session)}
}

func (m *MemoryBackend) Load(_ context.Context, id string) (Session, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.items[id]
	if !ok {
		return Session{}, false, nil
	}
	return s.clone(), true, nil
}

func (m *MemoryBackend) Save(_ context.Context, id string, s Session) error {
	m.mu.Lock()
	m.items[id] = s.clone()
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.items, id)
	m.mu.Unlock()
	return nil
}

// MemoryStore is a single-scope Store, handy in tests and one-shot tools.
func MemoryStore() Store {
	return Scoped(NewMemoryBackend(), "local")
}
