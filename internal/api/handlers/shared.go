package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/apperrors"
	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/validation"
)

// respondJSON sends a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Failed to encode JSON: %v", err)
		}
	}
}

// entryID extracts the already-validated entryId URL parameter.
func entryID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, "entryId"), 10, 64)
	return id
}

// respondServiceError maps service-layer errors onto HTTP statuses.
// Validation problems and malformed input are 400, missing entities 404,
// a busy store 503 (the caller may retry the single operation), and
// anything else is a storage failure surfaced as 500.
func respondServiceError(w http.ResponseWriter, err error, fallback string) {
	var validationErr *validation.Error

	switch {
	case errors.As(err, &validationErr):
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"fields": validationErr.Fields,
		})
	case errors.Is(err, apperrors.ErrInvalidDate),
		errors.Is(err, apperrors.ErrInvalidBroker),
		errors.Is(err, apperrors.ErrInvalidFilter),
		errors.Is(err, apperrors.ErrInvalidStatus):
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  fallback,
			"detail": err.Error(),
		})
	case errors.Is(err, apperrors.ErrEntryNotFound),
		errors.Is(err, apperrors.ErrAttachmentNotFound):
		respondJSON(w, http.StatusNotFound, map[string]string{
			"error":  err.Error(),
			"detail": "it may have been deleted by another user; refresh and retry",
		})
	case errors.Is(err, apperrors.ErrStoreBusy):
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error":  "store busy",
			"detail": "the database is under contention; retry the operation",
		})
	default:
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error":  fallback,
			"detail": err.Error(),
		})
	}
}
