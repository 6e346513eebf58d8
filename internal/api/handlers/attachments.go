package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/service"
)

// MaxAttachmentBytes is the upload size cap enforced at the API boundary.
// The store itself accepts any size; a programmatic caller bypassing this
// boundary is trusted.
const MaxAttachmentBytes = 5 * 1024 * 1024

// allowedExtensions are the accepted attachment file kinds, matching the
// document types users actually attach: trade confirmations, emails, scans.
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".txt":  true,
	".doc":  true,
	".docx": true,
	".msg":  true,
	".eml":  true,
}

// validateUpload checks the boundary rules for an uploaded file.
// Returns a human-readable rejection reason, or "" when acceptable.
func validateUpload(filename string, size int64) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return fmt.Sprintf("file type %q is not accepted", ext)
	}
	if size > MaxAttachmentBytes {
		return fmt.Sprintf("file exceeds the %d MB limit", MaxAttachmentBytes/(1024*1024))
	}
	return ""
}

// AttachmentHandler handles attachment-related HTTP requests
type AttachmentHandler struct {
	attachmentService *service.AttachmentService
}

// NewAttachmentHandler creates a new AttachmentHandler
func NewAttachmentHandler(attachmentService *service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{
		attachmentService: attachmentService,
	}
}

// Upload handles POST /api/entry/{entryId}/attachment. Expects a multipart
// form with a "file" part. Rejects oversized files and unaccepted file
// kinds before anything reaches the store.
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// One extra KiB so a payload at exactly the cap still parses.
	r.Body = http.MaxBytesReader(w, r.Body, MaxAttachmentBytes+1024)

	file, header, err := r.FormFile("file")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "a multipart \"file\" part is required",
			"detail": err.Error(),
		})
		return
	}
	defer file.Close()

	if reason := validateUpload(header.Filename, header.Size); reason != "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": reason,
		})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "failed to read uploaded file",
			"detail": err.Error(),
		})
		return
	}

	attachment, err := h.attachmentService.Add(entryID(r), header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		respondServiceError(w, err, "failed to store attachment")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"id":         attachment.ID,
		"entryId":    attachment.EntryID,
		"filename":   attachment.Filename,
		"fileType":   attachment.FileType,
		"uploadedAt": attachment.UploadedAt,
	})
}

// ListForEntry handles GET /api/entry/{entryId}/attachment.
// Returns metadata only, most recent upload first.
func (h *AttachmentHandler) ListForEntry(w http.ResponseWriter, r *http.Request) {
	metas, err := h.attachmentService.ListMetadata(entryID(r))
	if err != nil {
		respondServiceError(w, err, "failed to retrieve attachments")
		return
	}

	respondJSON(w, http.StatusOK, metas)
}

// Download handles GET /api/attachment/{attachmentId}. Streams the original
// payload bytes with the stored MIME type and filename.
func (h *AttachmentHandler) Download(w http.ResponseWriter, r *http.Request) {
	attachment, err := h.attachmentService.GetPayload(chi.URLParam(r, "attachmentId"))
	if err != nil {
		respondServiceError(w, err, "failed to retrieve attachment")
		return
	}

	w.Header().Set("Content-Type", attachment.FileType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(attachment.FileData); err != nil {
		// Response already committed; nothing to recover.
		return
	}
}

// Delete handles DELETE /api/attachment/{attachmentId}.
func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.attachmentService.DeleteOne(chi.URLParam(r, "attachmentId")); err != nil {
		respondServiceError(w, err, "failed to delete attachment")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// DeleteAllForEntry handles DELETE /api/entry/{entryId}/attachment.
func (h *AttachmentHandler) DeleteAllForEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.attachmentService.DeleteAllForEntry(entryID(r)); err != nil {
		respondServiceError(w, err, "failed to delete attachments")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
