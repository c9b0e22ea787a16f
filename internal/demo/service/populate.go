package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"custodian/internal/demo/models"
)

const attributeOperationPrefix = "update_"

// AttributeOperation returns the ledger operation that updates field.
func AttributeOperation(field string) string {
	return attributeOperationPrefix + strings.ToLower(field)
}

// populateAttributes submits one attribute update per declared field, in
// declaration order, as the asset's first owner. Owners is never submitted.
func (p *PipelineRun) populateAttributes(ctx context.Context, records []models.AssetRecord) ([]models.AssetRecord, error) {
	s := p.svc
	out := make([]models.AssetRecord, 0, len(records))
	for _, rec := range records {
		ownerName := rec.Definition.FirstOwner()
		owner, err := s.identities.Resolve(ownerName)
		if err != nil {
			return nil, fmt.Errorf("resolve owner of %s: %w", rec.ID, err)
		}

		applied := slices.Clip(rec.Attributes)
		for _, field := range rec.Definition.Fields {
			if field.Name == models.OwnersField {
				continue
			}
			op := AttributeOperation(field.Name)

			start := time.Now()
			err := s.ledger.UpdateAttribute(ctx, owner, op, field.Value, rec.ID)
			s.metrics.ObserveLedgerOperation("update", err, time.Since(start))
			if err != nil {
				return nil, fmt.Errorf("%s on %s: %w", op, rec.ID, err)
			}
			applied = append(applied, field)
		}
		rec.Attributes = applied
		out = append(out, rec)
	}
	return out, nil
}
