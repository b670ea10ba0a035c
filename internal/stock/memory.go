package stock

import (
	"context"
	"sync"
)

// MemoryStore is a Store kept in a map. Useful for tests and previews.
type MemoryStore struct {
	mu     sync.RWMutex
	stocks map[Key]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{stocks: make(map[Key]int)}
}

func (m *MemoryStore) LoadStock(_ context.Context, key Key) (int, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.stocks[key]
	return n, ok, nil
}

func (m *MemoryStore) SaveStock(_ context.Context, key Key, n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stocks[key] = n
	return nil
}
