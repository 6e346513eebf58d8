package handlers_test

import (
	"net/http"
	"testing"

	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/version"
)

func TestSystemEndpoints(t *testing.T) {
	t.Run("health reports connected database", func(t *testing.T) {
		router, _ := newTestRouter(t)

		rec := doJSON(t, router, http.MethodGet, "/api/system/health", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}

		var resp struct {
			Status   string `json:"status"`
			Database string `json:"database"`
		}
		decodeBody(t, rec, &resp)
		if resp.Status != "healthy" || resp.Database != "connected" {
			t.Errorf("health = %+v, want healthy/connected", resp)
		}
	})

	t.Run("health reports unhealthy when the database is gone", func(t *testing.T) {
		router, db := newTestRouter(t)
		if err := db.Close(); err != nil {
			t.Fatalf("Failed to close database: %v", err)
		}

		rec := doJSON(t, router, http.MethodGet, "/api/system/health", nil)
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503: %s", rec.Code, rec.Body.String())
		}

		var resp struct {
			Status string `json:"status"`
		}
		decodeBody(t, rec, &resp)
		if resp.Status != "unhealthy" {
			t.Errorf("status = %q, want unhealthy", resp.Status)
		}
	})

	t.Run("version returns the build version", func(t *testing.T) {
		router, _ := newTestRouter(t)

		rec := doJSON(t, router, http.MethodGet, "/api/system/version", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}

		var resp struct {
			Version string `json:"version"`
		}
		decodeBody(t, rec, &resp)
		if resp.Version != version.Version {
			t.Errorf("version = %q, want %q", resp.Version, version.Version)
		}
	})
}
