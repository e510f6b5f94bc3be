package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/datalens/datalens-engine/pkg/models"
	"github.com/datalens/datalens-engine/pkg/services"
)

// ExtractResponse carries an extracted schema.
type ExtractResponse struct {
	SnapshotID string         `json:"snapshotId,omitempty"`
	Tables     []models.Table `json:"tables"`
	TableCount int            `json:"tableCount"`
}

// CreateSnapshotResponse identifies a newly stored snapshot.
type CreateSnapshotResponse struct {
	SnapshotID string `json:"snapshotId"`
	TableCount int    `json:"tableCount"`
}

// SchemaHandler handles extraction and snapshot requests.
type SchemaHandler struct {
	schemaService services.SchemaService
	logger        *zap.Logger
}

// NewSchemaHandler creates a new schema handler.
func NewSchemaHandler(schemaService services.SchemaService, logger *zap.Logger) *SchemaHandler {
	return &SchemaHandler{
		schemaService: schemaService,
		logger:        logger,
	}
}

// RegisterRoutes registers the schema handler's routes on the given mux.
func (h *SchemaHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/extract", h.Extract)
	mux.HandleFunc("POST /api/snapshots", h.CreateSnapshot)
	mux.HandleFunc("GET /api/snapshots/{id}", h.GetSnapshot)
	mux.HandleFunc("POST /api/snapshots/{id}/extract", h.ReExtract)
}

// Extract handles POST /api/extract
// Extracts the schema described by the posted credentials without storing it.
func (h *SchemaHandler) Extract(w http.ResponseWriter, r *http.Request) {
	creds, err := decodeCredentials(w, r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	tables, err := h.schemaService.Extract(r.Context(), creds)
	if err != nil {
		writeServiceError(w, h.logger, err, "extract schema")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, ExtractResponse{Tables: tables, TableCount: len(tables)})
}

// CreateSnapshot handles POST /api/snapshots
func (h *SchemaHandler) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	creds, err := decodeCredentials(w, r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	snapshot, err := h.schemaService.CreateSnapshot(r.Context(), creds)
	if err != nil {
		writeServiceError(w, h.logger, err, "create snapshot")
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, CreateSnapshotResponse{
		SnapshotID: snapshot.ID,
		TableCount: snapshot.TableCount,
	})
}

// GetSnapshot handles GET /api/snapshots/{id}
func (h *SchemaHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.schemaService.GetSnapshot(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.logger, err, "get snapshot")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, snapshot)
}

// ReExtract handles POST /api/snapshots/{id}/extract
// The snapshot's tables are replaced wholesale and its quality results dropped.
func (h *SchemaHandler) ReExtract(w http.ResponseWriter, r *http.Request) {
	creds, err := decodeCredentials(w, r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	snapshot, err := h.schemaService.ReExtract(r.Context(), r.PathValue("id"), creds)
	if err != nil {
		writeServiceError(w, h.logger, err, "re-extract snapshot")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, ExtractResponse{
		SnapshotID: snapshot.ID,
		Tables:     snapshot.Tables,
		TableCount: snapshot.TableCount,
	})
}
