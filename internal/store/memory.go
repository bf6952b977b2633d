package store

import (
	"context"
	"sync"

	"github.com/gptyar/telegram-relay/internal/model"
)

// Compile-time interface check.
var _ Backend = (*MemoryStore)(nil)

// MemoryStore keeps encoded conversations in process memory. Values are
// stored encoded so callers never share slices with the store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[model.ConversationID][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[model.ConversationID][]byte)}
}

func (s *MemoryStore) Get(ctx context.Context, id model.ConversationID) ([]model.Message, error) {
	s.mu.RLock()
	raw, ok := s.data[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	return Decode(raw)
}

func (s *MemoryStore) Put(ctx context.Context, id model.ConversationID, messages []model.Message) error {
	raw, err := Encode(messages)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.data[id] = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id model.ConversationID) error {
	s.mu.Lock()
	delete(s.data, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
