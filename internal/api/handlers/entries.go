package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/api/request"
	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/model"
	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/service"
)

// EntryHandler handles entry-related HTTP requests
type EntryHandler struct {
	entryService      *service.EntryService
	attachmentService *service.AttachmentService
}

// NewEntryHandler creates a new EntryHandler
func NewEntryHandler(entryService *service.EntryService, attachmentService *service.AttachmentService) *EntryHandler {
	return &EntryHandler{
		entryService:      entryService,
		attachmentService: attachmentService,
	}
}

// maxJSONBody caps JSON request bodies. Entry fields are short strings, so
// 1 MiB is generous; only file uploads get the wider multipart cap.
const maxJSONBody = 1 << 20

// CreateEntryResponse is returned by Create. AttachmentSkipped carries the
// rejection reason when an uploaded file failed the boundary rules; the
// entry itself is still created in that case.
type CreateEntryResponse struct {
	Entry             model.Entry           `json:"entry"`
	Attachment        *model.AttachmentMeta `json:"attachment,omitempty"`
	AttachmentSkipped string                `json:"attachmentSkipped,omitempty"`
}

// Create handles POST /api/entry. Accepts either a JSON body or a
// multipart form; the multipart form may carry one optional "file" part
// with documentation to attach. A rejected or failed attachment never
// rolls back the created entry.
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		h.createMultipart(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	var req request.CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "invalid JSON body",
			"detail": err.Error(),
		})
		return
	}

	entry, err := h.entryService.Create(req)
	if err != nil {
		respondServiceError(w, err, "failed to create entry")
		return
	}

	respondJSON(w, http.StatusCreated, CreateEntryResponse{Entry: entry})
}

func (h *EntryHandler) createMultipart(w http.ResponseWriter, r *http.Request) {
	// The body cap is deliberately wider than the per-file attachment cap:
	// an oversized file must skip the attachment, not fail entry creation.
	r.Body = http.MaxBytesReader(w, r.Body, 32*1024*1024)

	if err := r.ParseMultipartForm(MaxAttachmentBytes); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "invalid multipart form",
			"detail": err.Error(),
		})
		return
	}

	req := request.CreateEntryRequest{
		Account:  r.FormValue("account"),
		Tickers:  r.FormValue("tickers"),
		HeldIn:   r.FormValue("heldIn"),
		Broker:   r.FormValue("broker"),
		SellDate: r.FormValue("sellDate"),
		Comments: r.FormValue("comments"),
	}

	entry, err := h.entryService.Create(req)
	if err != nil {
		respondServiceError(w, err, "failed to create entry")
		return
	}

	resp := CreateEntryResponse{Entry: entry}

	file, header, err := r.FormFile("file")
	switch {
	case err == http.ErrMissingFile:
		// No attachment provided.
	case err != nil:
		resp.AttachmentSkipped = "failed to read uploaded file: " + err.Error()
	default:
		defer file.Close()
		if reason := validateUpload(header.Filename, header.Size); reason != "" {
			resp.AttachmentSkipped = reason
			break
		}
		data, err := io.ReadAll(file)
		if err != nil {
			resp.AttachmentSkipped = "failed to read uploaded file: " + err.Error()
			break
		}
		attachment, err := h.attachmentService.Add(entry.ID, header.Filename, header.Header.Get("Content-Type"), data)
		if err != nil {
			resp.AttachmentSkipped = "failed to store attachment: " + err.Error()
			break
		}
		resp.Attachment = &model.AttachmentMeta{
			ID:         attachment.ID,
			EntryID:    attachment.EntryID,
			Filename:   attachment.Filename,
			FileType:   attachment.FileType,
			UploadedAt: attachment.UploadedAt,
		}
	}

	respondJSON(w, http.StatusCreated, resp)
}

// Get handles GET /api/entry/{entryId}.
func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.entryService.Get(entryID(r))
	if err != nil {
		respondServiceError(w, err, "failed to retrieve entry")
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

// Update handles PUT /api/entry/{entryId}. Rewrites the editable fields
// and recomputes the target date; workflow status is untouched.
func (h *EntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	var req request.UpdateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "invalid JSON body",
			"detail": err.Error(),
		})
		return
	}

	entry, err := h.entryService.Update(entryID(r), req)
	if err != nil {
		respondServiceError(w, err, "failed to update entry")
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

// Delete handles DELETE /api/entry/{entryId}. Removes the entry and its
// attachments together.
func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.entryService.Delete(entryID(r)); err != nil {
		respondServiceError(w, err, "failed to delete entry")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// SetCompleted handles POST /api/entry/{entryId}/complete with a body of
// {"completed": bool}. True jumps the entry to completed from any stage;
// false reopens it to pending.
func (h *EntryHandler) SetCompleted(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	var req request.SetCompletedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "invalid JSON body",
			"detail": err.Error(),
		})
		return
	}

	entry, err := h.entryService.SetCompleted(entryID(r), req.Completed)
	if err != nil {
		respondServiceError(w, err, "failed to update entry status")
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

// CycleStatusResponse is returned by Cycle so the caller can react to the
// new stage without re-querying.
type CycleStatusResponse struct {
	ID     int64        `json:"id"`
	Status model.Status `json:"status"`
}

// Cycle handles POST /api/entry/{entryId}/cycle. Advances the workflow
// stage one step: pending -> in_progress -> completed -> pending.
func (h *EntryHandler) Cycle(w http.ResponseWriter, r *http.Request) {
	id := entryID(r)

	status, err := h.entryService.CycleStatus(id)
	if err != nil {
		respondServiceError(w, err, "failed to cycle entry status")
		return
	}

	respondJSON(w, http.StatusOK, CycleStatusResponse{ID: id, Status: status})
}

// List handles GET /api/entry?filter=F. The default filter is "all".
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := model.EntryFilter(r.URL.Query().Get("filter"))
	if filter == "" {
		filter = model.FilterAll
	}
	if !filter.Valid() {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "invalid filter",
			"detail": string(filter),
		})
		return
	}

	entries, err := h.entryService.List(filter)
	if err != nil {
		respondServiceError(w, err, "failed to retrieve entries")
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

// Search handles GET /api/entry/search?q=Q. Matches account or tickers
// case-insensitively.
func (h *EntryHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": "query parameter q is required",
		})
		return
	}

	entries, err := h.entryService.Search(query)
	if err != nil {
		respondServiceError(w, err, "failed to search entries")
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

// AccountCounts handles GET /api/entry/accounts. Returns entry counts per
// uppercased account, used for duplicate-account badges.
func (h *EntryHandler) AccountCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.entryService.AccountCounts()
	if err != nil {
		respondServiceError(w, err, "failed to retrieve account counts")
		return
	}

	respondJSON(w, http.StatusOK, counts)
}

// Stats handles GET /api/entry/stats.
func (h *EntryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.entryService.Stats(r.Context())
	if err != nil {
		respondServiceError(w, err, "failed to retrieve stats")
		return
	}

	respondJSON(w, http.StatusOK, stats)
}
