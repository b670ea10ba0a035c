package cart

import (
	"context"
	"sync"
)

// MemoryPersistence keeps carts in a map. Lines are copied on the way in and
// out so callers never share slices with the store.
type MemoryPersistence struct {
	mu    sync.RWMutex
	carts map[string][]Line
}

func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{carts: make(map[string][]Line)}
}

func (m *MemoryPersistence) LoadCart(_ context.Context, cartID string) ([]Line, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lines, ok := m.carts[cartID]
	if !ok {
		return nil, false, nil
	}
	return cloneLines(lines), true, nil
}

func (m *MemoryPersistence) SaveCart(_ context.Context, cartID string, lines []Line) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[cartID] = cloneLines(lines)
	return nil
}

func cloneLines(in []Line) []Line {
	out := make([]Line, len(in))
	for i, l := range in {
		out[i] = l
		if l.Variation != nil {
			v := *l.Variation
			out[i].Variation = &v
		}
	}
	return out
}
