package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"custodian/internal/demo/models"
	"custodian/internal/demo/ports"
	"custodian/internal/demo/status"
	domainerrors "custodian/pkg/domain-errors"
	"custodian/pkg/platform/sentinel"
)

// PipelineRun ties one scenario to its status log and the ledger event
// stream for the duration of a run.
type PipelineRun struct {
	svc    *Service
	run    *models.Run
	status *status.Recorder

	once sync.Once
}

// stage is one step of the pipeline. Each stage receives the records produced
// by the previous one and returns the updated records.
type stage struct {
	name    string
	message string
	run     func(ctx context.Context, records []models.AssetRecord) ([]models.AssetRecord, error)
}

// ID returns the run ID.
func (p *PipelineRun) ID() string {
	return p.run.ID.String()
}

// Recorder returns the status log of this run.
func (p *PipelineRun) Recorder() *status.Recorder {
	return p.status
}

// Execute runs the pipeline to a terminal event and releases the live-run
// slot. A run executes at most once; later calls return an invalid state error.
func (p *PipelineRun) Execute(ctx context.Context) (*models.RunResult, error) {
	var (
		result *models.RunResult
		err    error
		ran    bool
	)
	p.once.Do(func() {
		ran = true
		defer p.svc.live.Unlock()
		result, err = p.execute(ctx)
	})
	if !ran {
		return nil, domainerrors.Wrap(sentinel.ErrInvalidState, domainerrors.CodeInternal, "demo run already executed")
	}
	return result, err
}

func (p *PipelineRun) execute(ctx context.Context) (*models.RunResult, error) {
	s := p.svc
	ctx, span := s.tracer.Start(ctx, "demo.run", runAttrs(p.run))
	defer span.End()

	definitions, err := s.scenarios.Resolve(p.run.Scenario)
	if err != nil {
		return nil, p.fail(ctx, err)
	}

	if err := s.stream.Connect(ctx); err != nil {
		return nil, p.fail(ctx, err)
	}
	defer p.disconnect(ctx)

	stages := []stage{
		{name: "create", message: models.MessageCreatingAssets, run: p.createAssets},
		{name: "assign", message: models.MessageAssigningAssets, run: p.assignInitialOwners},
		{name: "populate", message: models.MessageUpdatingAssets, run: p.populateAttributes},
		{name: "chain", message: models.MessageTransferringAssets, run: p.walkOwnerChains},
	}

	records := newRecords(definitions)
	for _, st := range stages {
		records, err = p.runStage(ctx, st, records)
		if err != nil {
			return nil, p.fail(ctx, err)
		}
	}

	return p.succeed(ctx, records), nil
}

func (p *PipelineRun) runStage(ctx context.Context, st stage, records []models.AssetRecord) ([]models.AssetRecord, error) {
	ctx, span := p.svc.tracer.Start(ctx, "demo.stage."+st.name,
		trace.WithAttributes(attribute.Int("demo.assets", len(records))))
	defer span.End()

	p.status.Record(ctx, models.StatusEvent{Message: st.message})

	start := time.Now()
	out, err := st.run(ctx, records)
	p.svc.metrics.ObserveStage(st.name, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, st.name+" failed")
		return nil, err
	}
	return out, nil
}

func (p *PipelineRun) succeed(ctx context.Context, records []models.AssetRecord) *models.RunResult {
	s := p.svc
	p.status.Record(ctx, models.StatusEvent{Message: models.MessageDemoSetup})

	ids := make([]models.AssetID, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	p.finish(ctx, models.RunStatusSucceeded, ids, "")
	s.logger.InfoContext(ctx, "demo run finished", "run_id", p.ID(), "scenario", p.run.Scenario, "assets", len(records))

	return &models.RunResult{
		RunID:    p.run.ID,
		Scenario: p.run.Scenario,
		Assets:   records,
		Events:   p.status.Events(),
	}
}

// fail records the terminal error event and returns err with its domain code.
// Operations already committed on the ledger are left as they are.
func (p *PipelineRun) fail(ctx context.Context, err error) error {
	event, coded := classify(err)
	p.status.Record(ctx, event)
	p.finish(ctx, models.RunStatusFailed, nil, err.Error())
	p.svc.logger.ErrorContext(ctx, "demo run failed", "run_id", p.ID(), "scenario", p.run.Scenario, "error", err)
	return coded
}

func (p *PipelineRun) finish(ctx context.Context, outcome models.RunStatus, ids []models.AssetID, reason string) {
	finished := p.svc.now().UTC()
	p.run.Status = outcome
	p.run.AssetIDs = ids
	p.run.Error = reason
	p.run.FinishedAt = &finished
	p.svc.saveRun(ctx, p.run)
	p.svc.metrics.IncrementRun(string(outcome))
}

func (p *PipelineRun) disconnect(ctx context.Context) {
	if err := p.svc.stream.Disconnect(); err != nil {
		p.svc.logger.WarnContext(ctx, "event stream disconnect failed", "run_id", p.ID(), "error", err)
	}
}

// classify maps a pipeline error to its terminal status event and wraps it
// with the domain code the transport maps to a status.
func classify(err error) (models.StatusEvent, error) {
	var lerr *ports.LedgerError
	switch {
	case errors.Is(err, models.ErrScenarioNotFound):
		return models.StatusEvent{Message: models.MessageScenarioNotRecognised, Error: true},
			domainerrors.Wrap(err, domainerrors.CodeBadRequest, models.MessageScenarioNotRecognised)
	case errors.Is(err, models.ErrInitialAssetsMissing):
		return models.StatusEvent{Message: models.MessageInitialAssetsNotFound, Error: true},
			domainerrors.Wrap(err, domainerrors.CodeNotFound, models.MessageInitialAssetsNotFound)
	case errors.As(err, &lerr):
		return models.StatusEvent{Message: models.MessageLedgerFailure, Detail: lerr.RawPayload(), Error: true},
			domainerrors.Wrap(err, domainerrors.CodeLedger, models.MessageLedgerFailure)
	default:
		return models.StatusEvent{Message: err.Error(), Error: true},
			domainerrors.Wrap(err, domainerrors.CodeInternal, "demo run failed")
	}
}

func newRecords(definitions []models.AssetDefinition) []models.AssetRecord {
	records := make([]models.AssetRecord, 0, len(definitions))
	for _, def := range definitions {
		records = append(records, models.AssetRecord{Definition: def.Clone()})
	}
	return records
}
