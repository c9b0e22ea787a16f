package status

import (
	"context"
	"slices"
	"sync"

	"custodian/internal/demo/models"
)

// InMemoryStore keeps the status log in process memory.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []models.StatusEvent
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
	return nil
}

func (s *InMemoryStore) Append(_ context.Context, event models.StatusEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]models.StatusEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := slices.Clone(s.events)
	if out == nil {
		out = []models.StatusEvent{}
	}
	return out, nil
}
