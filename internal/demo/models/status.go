package models

import (
	"encoding/json"
	"time"
)

// Status messages recorded during a pipeline run.
const (
	MessageCreatingAssets        = "Creating assets"
	MessageAssigningAssets       = "Assigning assets to initial owners"
	MessageUpdatingAssets        = "Updating assets"
	MessageTransferringAssets    = "Transferring assets between owners"
	MessageDemoSetup             = "Demo setup"
	MessageScenarioNotRecognised = "Scenario type not recognised"
	MessageInitialAssetsNotFound = "Initial assets not found"
	MessageLedgerFailure         = "Ledger operation failed"
)

// StatusEvent is one entry of the status log. Error events carry the raw
// ledger error payload in Detail when one exists.
type StatusEvent struct {
	Message   string          `json:"message"`
	Detail    json.RawMessage `json:"detail,omitempty"`
	Error     bool            `json:"error,omitempty"`
	Timestamp time.Time       `json:"timestamp,omitzero"`
}

// IsTerminal reports whether the event ends a run.
func (e StatusEvent) IsTerminal() bool {
	return e.Error || e.Message == MessageDemoSetup
}
