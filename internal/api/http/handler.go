package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/veranemoloko/post-downloader/internal/domain"
	errpkg "github.com/veranemoloko/post-downloader/internal/errors"
	"github.com/veranemoloko/post-downloader/internal/service"
	"github.com/veranemoloko/post-downloader/internal/validation"
)

// BatchServiceI defines the commands the presentation layer may issue.
type BatchServiceI interface {
	Start(posts []domain.Post, destination string, settings domain.Settings) (*service.Batch, error)
	Cancel() bool
	State() domain.DownloadState
}

// Defaults fill in whatever a start request leaves unset.
type Defaults struct {
	Destination string
	Settings    domain.Settings
}

// BatchHandler handles HTTP requests for the download batch.
type BatchHandler struct {
	batchService BatchServiceI
	defaults     Defaults
	logger       *slog.Logger
}

// NewBatchHandler creates a new BatchHandler with the provided service and logger.
func NewBatchHandler(batchService BatchServiceI, defaults Defaults, logger *slog.Logger) *BatchHandler {
	return &BatchHandler{
		batchService: batchService,
		defaults:     defaults,
		logger:       logger,
	}
}

// StartBatch handles the HTTP POST /batch request.
func (h *BatchHandler) StartBatch(w http.ResponseWriter, r *http.Request) {
	var req domain.StartBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Destination == "" {
		req.Destination = h.defaults.Destination
	}

	if err := validation.ValidateStartRequest(&req); err != nil {
		h.logger.Warn("validation failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	batch, err := h.batchService.Start(req.Posts, req.Destination, req.Settings(h.defaults.Settings))
	if err != nil {
		switch {
		case errors.Is(err, errpkg.ErrBatchInProgress):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, errpkg.ErrShuttingDown):
			writeError(w, http.StatusServiceUnavailable, err.Error())
		default:
			h.logger.Error("failed to start batch", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.logger.Info("batch accepted", "batch_id", batch.ID, "posts", batch.Total)

	writeJSON(w, http.StatusAccepted, domain.BatchResponse{State: h.batchService.State()})
}

// CancelBatch handles the HTTP DELETE /batch request. Cancelling with no
// active batch succeeds and reports cancelled=false.
func (h *BatchHandler) CancelBatch(w http.ResponseWriter, r *http.Request) {
	cancelled := h.batchService.Cancel()
	writeJSON(w, http.StatusOK, map[string]bool{
		"cancelled": cancelled,
	})
}

// GetBatch handles the HTTP GET /batch request.
func (h *BatchHandler) GetBatch(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.BatchResponse{State: h.batchService.State()})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}
