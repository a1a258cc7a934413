package api

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/jobtrail/internal/lease"
	"github.com/starford/jobtrail/internal/tracker"
)

const defaultMaxUploadBytes = 50 << 20 // 50 MB

// AttachmentHandler accepts, lists and hands out attachment files.
type AttachmentHandler struct {
	ctrl      *tracker.Controller
	maxUpload int64
}

// NewAttachmentHandler creates an attachment handler. A non-positive
// maxUpload uses the default limit.
func NewAttachmentHandler(ctrl *tracker.Controller, maxUpload int64) *AttachmentHandler {
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}
	return &AttachmentHandler{ctrl: ctrl, maxUpload: maxUpload}
}

// List handles GET /api/attachments.
func (h *AttachmentHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.ctrl.Attachments(r.Context())
	if err != nil {
		writeError(w, "list attachments", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"attachments": items})
}

// Upload handles POST /api/attachments (multipart/form-data, field "file",
// optional field "name").
//
//	@Summary		Upload an attachment
//	@Tags			attachments
//	@Accept			mpfd
//	@Produce		json
//	@Param			file	formData	file	true	"File to upload"
//	@Param			name	formData	string	false	"Display name"
//	@Success		201		{object}	tracker.AttachmentItem
//	@Failure		400		{object}	errResponse
//	@Failure		503		{object}	errResponse	"Attachment storage unavailable"
//	@Security		BearerAuth
//	@Router			/attachments [post]
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if !h.ctrl.AttachmentsAvailable() {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("attachment storage unavailable"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
		return
	}

	// Generic types are left empty so the store sniffs the content.
	ctype := header.Header.Get("Content-Type")
	if ctype == "application/octet-stream" {
		ctype = ""
	}
	filename := filepath.Base(header.Filename)
	item, err := h.ctrl.Upload(r.Context(), r.FormValue("name"), filename, ctype, content)
	if err != nil {
		writeError(w, "upload attachment", err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// Delete handles DELETE /api/attachments/{attachmentID}. Jobs linked to
// the attachment are unlinked.
func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.DeleteAttachment(r.Context(), chi.URLParam(r, "attachmentID")); err != nil {
		writeError(w, "delete attachment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Link handles PUT /api/jobs/{id}/attachment.
func (h *AttachmentHandler) Link(w http.ResponseWriter, r *http.Request) {
	var req LinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.ctrl.Link(r.Context(), id, req.AttachmentID); err != nil {
		writeError(w, "link attachment", err)
		return
	}
	j, ok := h.ctrl.Job(id)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

// Open handles GET /api/attachments/{attachmentID}?disposition=inline|attachment.
// It grants a short-lived lease; the content is fetched from the lease URL.
func (h *AttachmentHandler) Open(w http.ResponseWriter, r *http.Request) {
	l, err := h.ctrl.Open(r.Context(), chi.URLParam(r, "attachmentID"), disposition(r))
	if err != nil {
		writeError(w, "open attachment", err)
		return
	}
	writeJSON(w, http.StatusOK, leaseResponse(l))
}

// OpenForJob handles GET /api/jobs/{id}/attachment?disposition=inline|attachment.
func (h *AttachmentHandler) OpenForJob(w http.ResponseWriter, r *http.Request) {
	l, err := h.ctrl.OpenForJob(r.Context(), chi.URLParam(r, "id"), disposition(r))
	if err != nil {
		writeError(w, "open job attachment", err)
		return
	}
	writeJSON(w, http.StatusOK, leaseResponse(l))
}

// ServeLease handles GET /api/leases/{token}. Download leases are
// released as soon as the content has been written; inline leases stay
// valid until they expire so viewers can re-fetch.
func (h *AttachmentHandler) ServeLease(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	l, ok := h.ctrl.Lease(token)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("lease expired or unknown"))
		return
	}
	if l.Disposition == lease.Attachment {
		defer h.ctrl.ReleaseLease(token)
	}

	w.Header().Set("Content-Type", l.MIME)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(string(l.Disposition), map[string]string{"filename": l.Name}))
	w.Header().Set("Cache-Control", "no-store")
	http.ServeContent(w, r, "", time.Time{}, bytes.NewReader(l.Content))
}

func disposition(r *http.Request) lease.Disposition {
	if r.URL.Query().Get("disposition") == string(lease.Attachment) {
		return lease.Attachment
	}
	return lease.Inline
}

func leaseResponse(l lease.Lease) LeaseResponse {
	return LeaseResponse{
		Token:       l.Token,
		URL:         "/api/leases/" + l.Token,
		Name:        l.Name,
		MIME:        l.MIME,
		Disposition: string(l.Disposition),
		ExpiresAt:   l.ExpiresAt.UTC().Format(time.RFC3339),
	}
}
