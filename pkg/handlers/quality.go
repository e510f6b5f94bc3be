package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/datalens/datalens-engine/pkg/services"
)

// QualityHandler runs quality profiling over stored snapshots.
type QualityHandler struct {
	qualityService services.QualityService
	logger         *zap.Logger
}

func NewQualityHandler(qualityService services.QualityService, logger *zap.Logger) *QualityHandler {
	return &QualityHandler{qualityService: qualityService, logger: logger}
}

// RegisterRoutes registers the quality handler's routes on the given mux.
func (h *QualityHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/snapshots/{id}/quality", h.Analyze)
}

// Analyze handles POST /api/snapshots/{id}/quality
// Profiles the snapshot against the live target and stores the results.
func (h *QualityHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	creds, err := decodeCredentials(w, r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	id := r.PathValue("id")
	logger := h.logger.With(zap.String("snapshot_id", id))
	progress := func(done, total int, table string) {
		logger.Debug("Profiled table", zap.Int("done", done), zap.Int("total", total), zap.String("table", table))
	}

	result, err := h.qualityService.AnalyzeSnapshot(r.Context(), id, creds, progress)
	if err != nil {
		writeServiceError(w, h.logger, err, "analyze snapshot quality")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, result)
}
