package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps slots in process memory. Nothing survives a restart.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: map[string][]byte{}}
}

// Get returns a copy of the slot value.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if err := checkKey(key); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.slots[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set stores a copy of value.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slots == nil {
		s.slots = map[string][]byte{}
	}
	s.slots[key] = append([]byte(nil), value...)
	return nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }
