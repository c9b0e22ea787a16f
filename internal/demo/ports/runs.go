package ports

import (
	"context"

	"github.com/google/uuid"

	"custodian/internal/demo/models"
)

// RunStore persists run summaries. FindByID returns sentinel.ErrNotFound when
// the run does not exist.
type RunStore interface {
	Save(ctx context.Context, run *models.Run) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Run, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Run, error)
}
