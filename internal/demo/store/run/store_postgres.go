package run

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"custodian/internal/demo/models"
	"custodian/pkg/platform/sentinel"
	"custodian/pkg/platform/tx"
)

const schema = `CREATE TABLE IF NOT EXISTS demo_runs (
	id          UUID PRIMARY KEY,
	scenario    TEXT NOT NULL,
	status      TEXT NOT NULL,
	asset_ids   TEXT[] NOT NULL DEFAULT '{}',
	error       TEXT NOT NULL DEFAULT '',
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ
)`

const startedIndex = `CREATE INDEX IF NOT EXISTS demo_runs_started_at_idx ON demo_runs (started_at DESC)`

const upsertRun = `INSERT INTO demo_runs (id, scenario, status, asset_ids, error, started_at, finished_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
	status = EXCLUDED.status,
	asset_ids = EXCLUDED.asset_ids,
	error = EXCLUDED.error,
	finished_at = EXCLUDED.finished_at`

const selectRun = `SELECT id, scenario, status, asset_ids, error, started_at, finished_at FROM demo_runs`

// PostgresStore persists run summaries in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed run store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn returns the transaction carried by ctx, or the pool.
func (s *PostgresStore) conn(ctx context.Context) querier {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

// EnsureSchema creates the demo_runs table and its index when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	return tx.Run(ctx, s.db, func(ctx context.Context) error {
		if _, err := s.conn(ctx).ExecContext(ctx, schema); err != nil {
			return fmt.Errorf("create demo_runs: %w", err)
		}
		if _, err := s.conn(ctx).ExecContext(ctx, startedIndex); err != nil {
			return fmt.Errorf("create demo_runs index: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) Save(ctx context.Context, run *models.Run) error {
	if run == nil {
		return fmt.Errorf("run is required")
	}
	ids := make([]string, len(run.AssetIDs))
	for i, id := range run.AssetIDs {
		ids[i] = string(id)
	}
	var finished sql.NullTime
	if run.FinishedAt != nil {
		finished = sql.NullTime{Time: *run.FinishedAt, Valid: true}
	}
	_, err := s.conn(ctx).ExecContext(ctx, upsertRun,
		run.ID, run.Scenario, string(run.Status), pq.Array(ids), run.Error, run.StartedAt, finished,
	)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Run, error) {
	row := s.conn(ctx).QueryRowContext(ctx, selectRun+" WHERE id = $1", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find run: %w", err)
	}
	return run, nil
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]*models.Run, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, selectRun+" ORDER BY started_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*models.Run, error) {
	var (
		run      models.Run
		status   string
		ids      pq.StringArray
		finished sql.NullTime
		started  time.Time
	)
	if err := row.Scan(&run.ID, &run.Scenario, &status, &ids, &run.Error, &started, &finished); err != nil {
		return nil, err
	}
	run.Status = models.RunStatus(status)
	run.StartedAt = started
	run.AssetIDs = make([]models.AssetID, len(ids))
	for i, id := range ids {
		run.AssetIDs[i] = models.AssetID(id)
	}
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	return &run, nil
}
