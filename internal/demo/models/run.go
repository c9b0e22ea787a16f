package models

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// Run is the persisted summary of one pipeline run.
type Run struct {
	ID         uuid.UUID
	Scenario   string
	Status     RunStatus
	AssetIDs   []AssetID
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// RunResult is what a successful run hands back to its caller.
type RunResult struct {
	RunID    uuid.UUID
	Scenario string
	Assets   []AssetRecord
	Events   []StatusEvent
}
