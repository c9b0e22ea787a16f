package run

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodian/internal/demo/models"
	"custodian/pkg/platform/sentinel"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	older := &models.Run{ID: uuid.New(), Scenario: models.ScenarioSimple, Status: models.RunStatusSucceeded, StartedAt: base}
	newer := &models.Run{ID: uuid.New(), Scenario: models.ScenarioFull, Status: models.RunStatusRunning, StartedAt: base.Add(time.Minute)}
	require.NoError(t, store.Save(ctx, older))
	require.NoError(t, store.Save(ctx, newer))

	t.Run("find returns a copy", func(t *testing.T) {
		found, err := store.FindByID(ctx, older.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ScenarioSimple, found.Scenario)
		found.Scenario = "changed"

		again, err := store.FindByID(ctx, older.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ScenarioSimple, again.Scenario)
	})

	t.Run("missing run is not found", func(t *testing.T) {
		_, err := store.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("list is newest first and limited", func(t *testing.T) {
		runs, err := store.ListRecent(ctx, 10)
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.Equal(t, newer.ID, runs[0].ID)

		runs, err = store.ListRecent(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, runs, 1)
	})

	t.Run("save overwrites by id", func(t *testing.T) {
		finished := base.Add(2 * time.Minute)
		newer.Status = models.RunStatusFailed
		newer.FinishedAt = &finished
		require.NoError(t, store.Save(ctx, newer))

		found, err := store.FindByID(ctx, newer.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RunStatusFailed, found.Status)
		require.NotNil(t, found.FinishedAt)
		assert.Equal(t, finished, *found.FinishedAt)
	})
}
