package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"custodian/internal/demo/models"
)

// assignInitialOwners transfers every asset from the authority to its first
// real owner, Owners[1], under the first transfer label.
func (p *PipelineRun) assignInitialOwners(ctx context.Context, records []models.AssetRecord) ([]models.AssetRecord, error) {
	s := p.svc
	seller, err := s.identities.Resolve(s.authority)
	if err != nil {
		return nil, fmt.Errorf("resolve authority: %w", err)
	}
	label, err := models.TransferLabel(0)
	if err != nil {
		return nil, err
	}

	out := make([]models.AssetRecord, 0, len(records))
	for _, rec := range records {
		owner := rec.Definition.FirstOwner()
		if owner == "" {
			return nil, fmt.Errorf("%w: asset %s has no owner", models.ErrInvalidAssetDefinition, rec.ID)
		}
		buyer, err := s.identities.Resolve(owner)
		if err != nil {
			return nil, fmt.Errorf("resolve first owner of %s: %w", rec.ID, err)
		}

		start := time.Now()
		result, err := s.ledger.Transfer(ctx, seller, buyer, label, rec.ID)
		s.metrics.ObserveLedgerOperation("transfer", err, time.Since(start))
		if err != nil {
			return nil, fmt.Errorf("assign %s to %s: %w", rec.ID, owner, err)
		}
		rec.Holder = owner
		rec.Transfers = append(slices.Clip(rec.Transfers), result)
		out = append(out, rec)
	}
	return out, nil
}
