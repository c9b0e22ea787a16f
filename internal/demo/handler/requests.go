package handler

import (
	"strconv"
	"strings"

	dErrors "custodian/pkg/domain-errors"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 100
)

// RunDemoRequest triggers a demo run. Scenario validity is decided by the
// pipeline so that an unknown key still produces its terminal payload.
type RunDemoRequest struct {
	Scenario string `json:"scenario"`
}

// Normalize trims whitespace from the scenario key.
func (r *RunDemoRequest) Normalize() {
	if r == nil {
		return
	}
	r.Scenario = strings.TrimSpace(r.Scenario)
}

// parseLimit reads the runs page size from the query string.
func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultRunsLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer")
	}
	return min(limit, maxRunsLimit), nil
}
