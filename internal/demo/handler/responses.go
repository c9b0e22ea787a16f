package handler

import (
	"encoding/json"
	"errors"
	"time"

	"custodian/internal/demo/models"
	"custodian/internal/demo/ports"
	dErrors "custodian/pkg/domain-errors"
)

// ackChunk is written before the run starts. The terminal payload follows it
// on the same response.
var ackChunk = []byte(`{"message":"Creating assets"}&&`)

type messagePayload struct {
	Message string `json:"message"`
	Error   bool   `json:"error,omitempty"`
}

type StatusLogResponse struct {
	Logs []models.StatusEvent `json:"logs"`
}

type RunResponse struct {
	ID         string           `json:"id"`
	Scenario   string           `json:"scenario"`
	Status     models.RunStatus `json:"status"`
	AssetIDs   []models.AssetID `json:"asset_ids"`
	Error      string           `json:"error,omitempty"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
}

type RunListResponse struct {
	Runs []RunResponse `json:"runs"`
}

func toRunResponse(run *models.Run) RunResponse {
	ids := run.AssetIDs
	if ids == nil {
		ids = []models.AssetID{}
	}
	return RunResponse{
		ID:         run.ID.String(),
		Scenario:   run.Scenario,
		Status:     run.Status,
		AssetIDs:   ids,
		Error:      run.Error,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
	}
}

func toRunListResponse(runs []*models.Run) RunListResponse {
	out := RunListResponse{Runs: make([]RunResponse, 0, len(runs))}
	for _, run := range runs {
		out.Runs = append(out.Runs, toRunResponse(run))
	}
	return out
}

// terminalPayload is the single JSON value that ends a demo response. Ledger
// failures are passed through as the ledger reported them.
func terminalPayload(err error) []byte {
	var lerr *ports.LedgerError
	switch {
	case err == nil:
		return mustMarshal(messagePayload{Message: models.MessageDemoSetup})
	case errors.As(err, &lerr):
		return lerr.RawPayload()
	case errors.Is(err, models.ErrScenarioNotFound):
		return mustMarshal(messagePayload{Message: models.MessageScenarioNotRecognised, Error: true})
	case errors.Is(err, models.ErrInitialAssetsMissing):
		return mustMarshal(messagePayload{Message: models.MessageInitialAssetsNotFound, Error: true})
	default:
		return mustMarshal(messagePayload{Message: failureText(err), Error: true})
	}
}

// failureText prefers the cause under the outermost domain error.
func failureText(err error) string {
	var de *dErrors.Error
	if errors.As(err, &de) && de.Err != nil {
		return de.Err.Error()
	}
	return err.Error()
}

func mustMarshal(v messagePayload) []byte {
	body, err := json.Marshal(v)
	if err != nil {
		return []byte(`{"error":true}`)
	}
	return body
}
