// Package run persists summaries of demo pipeline runs.
package run

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"

	"custodian/internal/demo/models"
	"custodian/pkg/platform/sentinel"
)

// InMemoryStore keeps run summaries in process memory.
type InMemoryStore struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]models.Run
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{runs: make(map[uuid.UUID]models.Run)}
}

func (s *InMemoryStore) Save(_ context.Context, run *models.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = copyRun(*run)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := copyRun(run)
	return &out, nil
}

func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]*models.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runs := make([]*models.Run, 0, len(s.runs))
	for _, run := range s.runs {
		out := copyRun(run)
		runs = append(runs, &out)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func copyRun(run models.Run) models.Run {
	run.AssetIDs = slices.Clone(run.AssetIDs)
	if run.FinishedAt != nil {
		finished := *run.FinishedAt
		run.FinishedAt = &finished
	}
	return run
}
