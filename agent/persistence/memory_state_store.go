package persistence

import (
	"context"
	"sort"
	"sync"
)

// MemoryStateStore keeps state documents in process memory.
// Suitable for development and testing. Data is lost on restart.
type MemoryStateStore struct {
	states map[string][]byte
	mu     sync.RWMutex
	closed bool
}

// NewMemoryStateStore creates a new in-memory state store
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string][]byte)}
}

// Close closes the store
func (s *MemoryStateStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Ping checks if the store is healthy
func (s *MemoryStateStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

// SaveState stores a copy of data
func (s *MemoryStateStore) SaveState(ctx context.Context, conversationID string, data []byte) error {
	if err := ValidateConversationID(conversationID); err != nil {
		return err
	}
	if len(data) == 0 {
		return ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	s.states[conversationID] = cloneBytes(data)
	return nil
}

// LoadState returns a copy of the saved document
func (s *MemoryStateStore) LoadState(ctx context.Context, conversationID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	data, ok := s.states[conversationID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneBytes(data), nil
}

// DeleteState removes a saved document
func (s *MemoryStateStore) DeleteState(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	if _, ok := s.states[conversationID]; !ok {
		return ErrNotFound
	}
	delete(s.states, conversationID)
	return nil
}

// ListStates returns saved IDs
func (s *MemoryStateStore) ListStates(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	ids := make([]string, 0, len(s.states))
	for id := range s.states {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
