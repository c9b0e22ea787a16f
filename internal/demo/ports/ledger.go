package ports

//go:generate mockgen -source=ledger.go -destination=mocks/ledger_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"fmt"

	"custodian/internal/demo/models"
)

// Ledger submits demo transactions. Implementations accept one in-flight
// submission per identity; callers must wait for each acknowledgment before
// submitting the next operation.
type Ledger interface {
	// Create registers a new asset authored by author and returns its ID.
	Create(ctx context.Context, author models.Identity) (models.AssetID, error)

	// Transfer moves assetID from seller to buyer under the given transfer label.
	Transfer(ctx context.Context, seller, buyer models.Identity, label string, assetID models.AssetID) (models.TransferResult, error)

	// UpdateAttribute applies one attribute operation (e.g. "update_colour") as owner.
	UpdateAttribute(ctx context.Context, owner models.Identity, operation, value string, assetID models.AssetID) error
}

// EventStream is the ledger commit event connection. A pipeline run opens it
// before the first submission and closes it exactly once.
type EventStream interface {
	Connect(ctx context.Context) error
	Disconnect() error
}

// LedgerError is returned by ledger adapters when a submission fails. Payload
// holds the raw error object reported by the ledger and is surfaced verbatim
// to the caller of the demo run.
type LedgerError struct {
	Op      string
	AssetID models.AssetID
	Payload json.RawMessage
	Err     error
}

func (e *LedgerError) Error() string {
	if e.AssetID != "" {
		return fmt.Sprintf("ledger %s %s: %v", e.Op, e.AssetID, e.Err)
	}
	return fmt.Sprintf("ledger %s: %v", e.Op, e.Err)
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}

// RawPayload returns the ledger's error object, or a minimal
// {"message": ..., "error": true} object when the ledger gave none.
func (e *LedgerError) RawPayload() json.RawMessage {
	if len(e.Payload) > 0 && json.Valid(e.Payload) {
		return e.Payload
	}
	msg := e.Op
	if e.Err != nil {
		msg = e.Err.Error()
	}
	body, err := json.Marshal(struct {
		Message string `json:"message"`
		Error   bool   `json:"error"`
	}{Message: msg, Error: true})
	if err != nil {
		return json.RawMessage(`{"error":true}`)
	}
	return body
}
