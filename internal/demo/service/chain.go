package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"custodian/internal/demo/models"
)

// walkOwnerChains moves every asset along the rest of its owner chain. Assets
// are processed one after another and each hop waits for the previous one.
func (p *PipelineRun) walkOwnerChains(ctx context.Context, records []models.AssetRecord) ([]models.AssetRecord, error) {
	out := make([]models.AssetRecord, 0, len(records))
	for _, rec := range records {
		hops, holder, err := p.walkChain(ctx, rec.ID, rec.Definition.Owners)
		if err != nil {
			return nil, err
		}
		rec.Holder = holder
		rec.Transfers = append(slices.Clip(rec.Transfers), hops...)
		out = append(out, rec)
	}
	return out, nil
}

// walkChain transfers assetID hop by hop. While more than two owners remain,
// Owners[1] sells to Owners[2] under label k+1 and the list shifts left by
// one. The first two entries were consumed by the initial assignment.
func (p *PipelineRun) walkChain(ctx context.Context, assetID models.AssetID, chain []string) ([]models.TransferResult, string, error) {
	s := p.svc
	owners := slices.Clone(chain)
	hops := make([]models.TransferResult, 0, max(len(owners)-2, 0))

	for k := 0; len(owners) > 2; k++ {
		label, err := models.TransferLabel(k + 1)
		if err != nil {
			return nil, "", fmt.Errorf("asset %s: %w", assetID, err)
		}
		seller, err := s.identities.Resolve(owners[1])
		if err != nil {
			return nil, "", fmt.Errorf("resolve seller of %s: %w", assetID, err)
		}
		buyer, err := s.identities.Resolve(owners[2])
		if err != nil {
			return nil, "", fmt.Errorf("resolve buyer of %s: %w", assetID, err)
		}

		start := time.Now()
		result, err := s.ledger.Transfer(ctx, seller, buyer, label, assetID)
		s.metrics.ObserveLedgerOperation("transfer", err, time.Since(start))
		if err != nil {
			return nil, "", fmt.Errorf("hop %d of %s (%s): %w", k+1, assetID, label, err)
		}
		hops = append(hops, result)
		owners = owners[1:]
	}

	return hops, owners[len(owners)-1], nil
}
