// Package handler exposes the demo pipeline over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"custodian/internal/demo/models"
	"custodian/internal/demo/service"
	dErrors "custodian/pkg/domain-errors"
	"custodian/pkg/platform/httputil"
)

// Service is the demo pipeline as seen by the transport.
type Service interface {
	Start(ctx context.Context, scenario string) (*service.PipelineRun, error)
	StatusLog(ctx context.Context) ([]models.StatusEvent, error)
	GetRun(ctx context.Context, id uuid.UUID) (*models.Run, error)
	ListRuns(ctx context.Context, limit int) ([]*models.Run, error)
}

// Handler serves the /admin/demo routes.
type Handler struct {
	demo   Service
	logger *slog.Logger
}

// New creates a new demo Handler.
func New(demo Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{demo: demo, logger: logger}
}

// Register registers the demo routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/admin/demo", h.handleRunDemo)
	r.Get("/admin/demo/status", h.handleStatusLog)
	r.Get("/admin/demo/runs", h.handleListRuns)
	r.Get("/admin/demo/runs/{id}", h.handleGetRun)
}

// handleRunDemo acknowledges the request, runs the pipeline to completion and
// writes one terminal payload. The run is not cancelled when the client goes
// away.
func (h *Handler) handleRunDemo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)

	var req RunDemoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid demo request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	req.Normalize()

	run, err := h.demo.Start(ctx, req.Scenario)
	if err != nil {
		h.logger.WarnContext(ctx, "demo run rejected",
			"request_id", requestID,
			"scenario", req.Scenario,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(ackChunk); err != nil {
		h.logger.WarnContext(ctx, "demo acknowledgment not delivered", "request_id", requestID, "run_id", run.ID(), "error", err)
	}
	if err := http.NewResponseController(w).Flush(); err != nil {
		h.logger.DebugContext(ctx, "response flush unsupported", "request_id", requestID, "error", err)
	}

	_, err = run.Execute(context.WithoutCancel(ctx))
	if _, werr := w.Write(terminalPayload(err)); werr != nil {
		h.logger.WarnContext(ctx, "demo result not delivered", "request_id", requestID, "run_id", run.ID(), "error", werr)
	}
}

func (h *Handler) handleStatusLog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	events, err := h.demo.StatusLog(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read status log",
			"request_id", middleware.GetReqID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, StatusLogResponse{Logs: events})
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	runs, err := h.demo.ListRuns(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list runs",
			"request_id", middleware.GetReqID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRunListResponse(runs))
}

func (h *Handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid run id"))
		return
	}
	run, err := h.demo.GetRun(ctx, id)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "failed to load run",
				"request_id", middleware.GetReqID(ctx),
				"run_id", id.String(),
				"error", err.Error(),
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRunResponse(run))
}
