package store

import (
	"context"
	"sync"

	"github.com/PandeyAnukrati/Carti/internal/model/chat"
)

// MemoryStore implements Store with an in-memory map, suitable for tests and
// anonymous sessions.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]chat.Transcript
}

// NewMemoryStore returns an empty in-memory transcript store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]chat.Transcript)}
}

// Load returns a copy of the transcript saved under key.
func (s *MemoryStore) Load(_ context.Context, key string) (chat.Transcript, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	return t.Clone(), nil
}

// Save stores a copy of the transcript under key. Empty transcripts are not
// written.
func (s *MemoryStore) Save(_ context.Context, key string, t chat.Transcript) error {
	if len(t) == 0 {
		return nil
	}

	s.mu.Lock()
	s.items[key] = t.Clone()
	s.mu.Unlock()
	return nil
}

// Clear removes the entry for key.
func (s *MemoryStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	return nil
}
