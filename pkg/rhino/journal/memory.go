package journal

import (
	"sync"
	"time"
)

// MemoryStore is an in-memory journal for testing.
// Entries are lost when the process exits.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]Entry // registryID -> entries in append order
	closed  bool
}

// NewMemoryStore creates a new in-memory journal store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string][]Entry),
	}
}

// Append implements Store.
func (m *MemoryStore) Append(e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	e.Sequence = len(m.entries[e.RegistryID]) + 1
	e.Timestamp = time.Now().UTC()
	m.entries[e.RegistryID] = append(m.entries[e.RegistryID], e)
	return nil
}

// List implements Store.
func (m *MemoryStore) List(registryID string) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	stored := m.entries[registryID]
	out := make([]Entry, len(stored))
	copy(out, stored)
	return out, nil
}

// Purge implements Store.
func (m *MemoryStore) Purge(registryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.entries, registryID)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.entries = nil
	return nil
}

// Len returns the total number of entries across all registries.
// Useful for testing.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, entries := range m.entries {
		count += len(entries)
	}
	return count
}
