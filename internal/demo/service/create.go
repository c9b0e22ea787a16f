package service

import (
	"context"
	"fmt"
	"time"

	"custodian/internal/demo/models"
)

// createAssets creates one ledger asset per record, in order, authored by the
// authority. The returned records are index-aligned with the input.
func (p *PipelineRun) createAssets(ctx context.Context, records []models.AssetRecord) ([]models.AssetRecord, error) {
	s := p.svc
	author, err := s.identities.Resolve(s.authority)
	if err != nil {
		return nil, fmt.Errorf("resolve authority: %w", err)
	}

	out := make([]models.AssetRecord, 0, len(records))
	for i, rec := range records {
		start := time.Now()
		id, err := s.ledger.Create(ctx, author)
		s.metrics.ObserveLedgerOperation("create", err, time.Since(start))
		if err != nil {
			return nil, fmt.Errorf("create asset %d of %d: %w", i+1, len(records), err)
		}
		rec.ID = id
		rec.Holder = s.authority
		out = append(out, rec)
		s.logger.DebugContext(ctx, "asset created", "run_id", p.ID(), "asset_id", string(id))
	}
	return out, nil
}
