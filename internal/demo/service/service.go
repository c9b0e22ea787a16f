// Package service runs the demo seeding pipeline: it creates a scenario's
// assets on the ledger, hands each to its first owner, populates attributes
// and walks the owner chain, recording progress to the status log.
//
// Every ledger submission is awaited before the next one is issued. The
// ledger client serialises writes per identity and concurrent submission is
// not supported.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"custodian/internal/demo/metrics"
	"custodian/internal/demo/models"
	"custodian/internal/demo/ports"
	"custodian/internal/demo/status"
	domainerrors "custodian/pkg/domain-errors"
	"custodian/pkg/platform/sentinel"
)

// DefaultAuthority is the identity that authors every asset and makes the
// initial assignment.
const DefaultAuthority = "Kollur"

const tracerName = "custodian/demo"

// Deps are the collaborators of the pipeline. Runs is optional.
type Deps struct {
	Scenarios   ports.ScenarioSource
	Ledger      ports.Ledger
	Stream      ports.EventStream
	Identities  ports.IdentityResolver
	StatusStore status.Store
	Runs        ports.RunStore
	Logger      *slog.Logger
}

// Service owns the single live demo run.
type Service struct {
	scenarios  ports.ScenarioSource
	ledger     ports.Ledger
	stream     ports.EventStream
	identities ports.IdentityResolver
	statuses   status.Store
	runs       ports.RunStore
	logger     *slog.Logger

	authority string
	metrics   *metrics.Metrics
	sinks     []status.Sink
	tracer    trace.Tracer
	now       func() time.Time

	// held for the lifetime of a run
	live sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

func WithAuthority(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.authority = name
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithSinks adds status sinks that receive every event of every run.
func WithSinks(sinks ...status.Sink) Option {
	return func(s *Service) {
		s.sinks = append(s.sinks, sinks...)
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New validates deps and builds the service.
func New(deps Deps, opts ...Option) (*Service, error) {
	switch {
	case deps.Scenarios == nil:
		return nil, errors.New("scenario source is required")
	case deps.Ledger == nil:
		return nil, errors.New("ledger is required")
	case deps.Stream == nil:
		return nil, errors.New("event stream is required")
	case deps.Identities == nil:
		return nil, errors.New("identity resolver is required")
	case deps.StatusStore == nil:
		return nil, errors.New("status store is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		scenarios:  deps.Scenarios,
		ledger:     deps.Ledger,
		stream:     deps.Stream,
		identities: deps.Identities,
		statuses:   deps.StatusStore,
		runs:       deps.Runs,
		logger:     logger,
		authority:  DefaultAuthority,
		tracer:     otel.Tracer(tracerName),
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Authority returns the name of the authoring identity.
func (s *Service) Authority() string {
	return s.authority
}

// Start claims the live-run slot, resets the status log and returns the run.
// It fails with a conflict when another run is live. The caller must call
// Execute on the returned run.
func (s *Service) Start(ctx context.Context, scenario string) (*PipelineRun, error) {
	if !s.live.TryLock() {
		return nil, domainerrors.Wrap(models.ErrRunInProgress, domainerrors.CodeConflict, "demo run already in progress")
	}

	runID := uuid.New()
	recorder := status.NewRecorder(runID, s.statuses, s.logger,
		status.WithSinks(s.sinks...),
		status.WithMetrics(s.metrics),
		status.WithClock(s.now),
	)
	recorder.Reset(ctx)

	run := &models.Run{
		ID:        runID,
		Scenario:  scenario,
		Status:    models.RunStatusRunning,
		StartedAt: s.now().UTC(),
	}
	s.saveRun(ctx, run)

	s.logger.InfoContext(ctx, "demo run started", "run_id", runID.String(), "scenario", scenario)
	return &PipelineRun{svc: s, run: run, status: recorder}, nil
}

// Run starts and executes a run for scenario.
func (s *Service) Run(ctx context.Context, scenario string) (*models.RunResult, error) {
	run, err := s.Start(ctx, scenario)
	if err != nil {
		return nil, err
	}
	return run.Execute(ctx)
}

// StatusLog returns the persisted status log of the latest run.
func (s *Service) StatusLog(ctx context.Context) ([]models.StatusEvent, error) {
	events, err := s.statuses.List(ctx)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to read status log")
	}
	return events, nil
}

// GetRun returns one run summary from the history.
func (s *Service) GetRun(ctx context.Context, id uuid.UUID) (*models.Run, error) {
	if s.runs == nil {
		return nil, domainerrors.New(domainerrors.CodeNotFound, "run history is disabled")
	}
	run, err := s.runs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, domainerrors.Wrap(err, domainerrors.CodeNotFound, "run not found")
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to load run")
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Service) ListRuns(ctx context.Context, limit int) ([]*models.Run, error) {
	if s.runs == nil {
		return []*models.Run{}, nil
	}
	runs, err := s.runs.ListRecent(ctx, limit)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to list runs")
	}
	return runs, nil
}

// saveRun persists run history. History is informational: failures are
// logged and the run carries on.
func (s *Service) saveRun(ctx context.Context, run *models.Run) {
	if s.runs == nil {
		return
	}
	if err := s.runs.Save(ctx, run); err != nil {
		s.logger.WarnContext(ctx, "run history save failed", "run_id", run.ID.String(), "error", err)
	}
}

func runAttrs(run *models.Run) trace.SpanStartEventOption {
	return trace.WithAttributes(
		attribute.String("demo.run_id", run.ID.String()),
		attribute.String("demo.scenario", run.Scenario),
	)
}
