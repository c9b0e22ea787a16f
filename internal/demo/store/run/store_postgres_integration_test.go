//go:build integration

package run

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"custodian/internal/demo/models"
	"custodian/pkg/platform/sentinel"
	"custodian/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = NewPostgres(s.pg.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
	s.Require().NoError(s.store.EnsureSchema(context.Background()), "schema creation is idempotent")
}

func (s *PostgresStoreSuite) TearDownSuite() {
	if s.pg != nil {
		_ = s.pg.Close(context.Background())
	}
}

func (s *PostgresStoreSuite) TestSaveAndFind() {
	ctx := context.Background()
	started := time.Now().UTC().Truncate(time.Microsecond)
	run := &models.Run{
		ID:        uuid.New(),
		Scenario:  models.ScenarioFull,
		Status:    models.RunStatusRunning,
		StartedAt: started,
	}
	s.Require().NoError(s.store.Save(ctx, run))

	finished := started.Add(3 * time.Second)
	run.Status = models.RunStatusSucceeded
	run.AssetIDs = []models.AssetID{"asset-0001", "asset-0002"}
	run.FinishedAt = &finished
	s.Require().NoError(s.store.Save(ctx, run))

	got, err := s.store.FindByID(ctx, run.ID)
	s.Require().NoError(err)
	s.Equal(models.RunStatusSucceeded, got.Status)
	s.Equal(run.AssetIDs, got.AssetIDs)
	s.True(started.Equal(got.StartedAt))
	s.Require().NotNil(got.FinishedAt)
	s.True(finished.Equal(*got.FinishedAt))

	_, err = s.store.FindByID(ctx, uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListRecentNewestFirst() {
	ctx := context.Background()
	base := time.Now().UTC().Add(time.Hour)
	var ids []uuid.UUID
	for i := range 3 {
		run := &models.Run{
			ID:        uuid.New(),
			Scenario:  models.ScenarioSimple,
			Status:    models.RunStatusFailed,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}
		s.Require().NoError(s.store.Save(ctx, run))
		ids = append(ids, run.ID)
	}

	runs, err := s.store.ListRecent(ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(runs, 2)
	s.Equal(ids[2], runs[0].ID)
	s.Equal(ids[1], runs[1].ID)
}
