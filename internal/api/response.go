package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"restaurante-api/internal/models"
)

// WriteJSON writes a JSON response body with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// WriteError writes an error response in the service's standard shape.
func WriteError(w http.ResponseWriter, statusCode int, message, requestID string) {
	WriteJSON(w, statusCode, map[string]interface{}{
		"error":      message,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"request_id": requestID,
	})
}

// WriteDomainError translates a domain error into an HTTP response. Errors
// outside the domain set are reported as a generic operation failure.
func WriteDomainError(w http.ResponseWriter, err error, requestID string) {
	status := ErrorStatus(err)
	if status == http.StatusInternalServerError {
		WriteError(w, status, "internal server error", requestID)
		return
	}
	WriteError(w, status, err.Error(), requestID)
}

// ErrorStatus maps domain errors onto HTTP status codes. Validation and
// transition failures are client errors; unknown errors are internal.
func ErrorStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, models.ErrInvalidName),
		errors.Is(err, models.ErrInvalidPrice),
		errors.Is(err, models.ErrEmptyOrder),
		errors.Is(err, models.ErrDishNotFound),
		errors.Is(err, models.ErrInvalidStatus),
		errors.Is(err, models.ErrAlreadyCancelled),
		errors.Is(err, models.ErrCannotCancelDelivered):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
