package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/datalens/datalens-engine/pkg/apperrors"
	"github.com/datalens/datalens-engine/pkg/logging"
	"github.com/datalens/datalens-engine/pkg/models"
)

// maxRequestBody bounds credential payloads.
const maxRequestBody = 1 << 20

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// writeError writes an error response, logging if the write itself fails.
func writeError(w http.ResponseWriter, logger *zap.Logger, statusCode int, errorCode, message string) {
	if err := ErrorResponse(w, statusCode, errorCode, message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}

// writeJSON writes a JSON response, logging if the write fails.
func writeJSON(w http.ResponseWriter, logger *zap.Logger, statusCode int, data any) {
	if err := WriteJSON(w, statusCode, data); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}

// writeServiceError maps service errors onto HTTP statuses:
// validation 400, unknown snapshot 404, unreachable target 502.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error, action string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		writeError(w, logger, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		writeError(w, logger, http.StatusNotFound, "not_found", "Snapshot not found")
	case errors.Is(err, apperrors.ErrConnection):
		writeError(w, logger, http.StatusBadGateway, "connection_failed", logging.SanitizeError(err))
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, logger, http.StatusGatewayTimeout, "timeout", fmt.Sprintf("Timed out while trying to %s", action))
	default:
		logger.Error("Request failed", zap.String("action", action), zap.String("error", logging.SanitizeError(err)))
		writeError(w, logger, http.StatusInternalServerError, "internal_error", fmt.Sprintf("Failed to %s", action))
	}
}

// decodeCredentials reads the credential body of a request.
func decodeCredentials(w http.ResponseWriter, r *http.Request) (models.Credentials, error) {
	var creds models.Credentials
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(&creds); err != nil {
		return models.Credentials{}, err
	}
	return creds, nil
}
