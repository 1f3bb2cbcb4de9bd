package storage

import (
	"context"
	"sync"
)

var _ KeyValueStore = (*MemoryStore)(nil)

// MemoryStore keeps values in process memory. Nothing survives a restart.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

// Get returns a copy of the stored value
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, ErrKeyRequired
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Set stores a copy of value
func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	if key == "" {
		return ErrKeyRequired
	}
	v := make([]byte, len(value))
	copy(v, value)

	s.mu.Lock()
	s.values[key] = v
	s.mu.Unlock()
	return nil
}

// Delete removes a key; deleting a missing key is not an error
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
	return nil
}
