// Package middleware provides HTTP middleware for request validation and processing.
package middleware

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/validation"
)

// respondBadRequest rejects the request before it reaches a handler, in the
// same error shape the handlers use.
func respondBadRequest(w http.ResponseWriter, message, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)

	body := map[string]string{"error": message}
	if detail != "" {
		body["detail"] = detail
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

// ValidateEntryIDMiddleware validates that the entryId URL parameter is a
// positive integer. Returns 400 Bad Request otherwise. Apply to routes that
// carry an entry ID in the URL path:
//
//	r.Route("/{entryId}", func(r chi.Router) {
//	    r.Use(middleware.ValidateEntryIDMiddleware)
//	    r.Put("/", handler.UpdateEntry)
//	})
func ValidateEntryIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		idStr := chi.URLParam(r, "entryId")

		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil || id <= 0 {
			respondBadRequest(w, "valid entry ID is required", idStr)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ValidateAttachmentIDMiddleware validates that the attachmentId URL
// parameter is present and a valid UUID. Returns 400 Bad Request otherwise.
func ValidateAttachmentIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "attachmentId")

		if id == "" {
			respondBadRequest(w, "valid attachment ID is required", "")
			return
		}

		if err := validation.ValidateUUID(id); err != nil {
			respondBadRequest(w, "invalid attachment ID format", err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}
