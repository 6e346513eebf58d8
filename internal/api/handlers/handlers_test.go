package handlers_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/api"
	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/config"
	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/testutil"
)

// newTestRouter wires the full middleware and routing stack against an
// in-memory database, so handler tests exercise the same paths production
// requests take.
func newTestRouter(t *testing.T) (http.Handler, *sql.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cfg := &config.Config{
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}

	router := api.NewRouter(
		testutil.NewTestSystemService(t, db),
		testutil.NewTestEntryService(t, db),
		testutil.NewTestAttachmentService(t, db),
		cfg,
	)
	return router, db
}

// doJSON performs a request with a JSON body (or none) and returns the
// recorded response.
func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// decodeBody unmarshals the recorded JSON response into dest.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()

	if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
	}
}

// multipartBody builds a multipart form with the given fields and, when
// filename is non-empty, a single "file" part carrying fileData.
func multipartBody(t *testing.T, fields map[string]string, filename string, fileData []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("Failed to write form field %q: %v", name, err)
		}
	}

	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("Failed to create file part: %v", err)
		}
		if _, err := part.Write(fileData); err != nil {
			t.Fatalf("Failed to write file part: %v", err)
		}
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

// createEntryViaAPI posts a minimal valid entry and returns its ID.
func createEntryViaAPI(t *testing.T, router http.Handler) int64 {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/entry/", map[string]string{
		"account":  "handler-test",
		"tickers":  "VTI",
		"heldIn":   "CASH",
		"broker":   "SCHWAB",
		"sellDate": "2024-01-03",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("entry create returned status %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Entry struct {
			ID int64 `json:"id"`
		} `json:"entry"`
	}
	decodeBody(t, rec, &resp)
	if resp.Entry.ID == 0 {
		t.Fatal("entry create did not return an ID")
	}
	return resp.Entry.ID
}

func entryPath(id int64, suffix string) string {
	return fmt.Sprintf("/api/entry/%d%s", id, suffix)
}
