package api

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/jobtrail/internal/models"
	"github.com/starford/jobtrail/internal/parser"
	"github.com/starford/jobtrail/internal/snapshot"
	"github.com/starford/jobtrail/internal/tracker"
	"github.com/starford/jobtrail/internal/view"
)

// Handler holds API route handlers.
type Handler struct {
	ctrl *tracker.Controller
}

// NewHandler creates a new Handler.
func NewHandler(ctrl *tracker.Controller) *Handler {
	return &Handler{ctrl: ctrl}
}

// dispatchJob runs a job command and responds with the job afterwards.
// Commands on unknown ids are no-ops, so a missing job answers 204.
func (h *Handler) dispatchJob(w http.ResponseWriter, r *http.Request, op string, cmd tracker.Command) {
	if err := h.ctrl.Dispatch(r.Context(), cmd); err != nil {
		writeError(w, op, err)
		return
	}
	h.respondJob(w, chi.URLParam(r, "id"))
}

func (h *Handler) respondJob(w http.ResponseWriter, id string) {
	j, ok := h.ctrl.Job(id)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

// ListJobs handles GET /api/jobs.
//
//	@Summary		List the visible jobs
//	@Description	Without query parameters the stored view query is used. Any of q, status or sort refines it for this request only.
//	@Tags			jobs
//	@Produce		json
//	@Param			q		query		string	false	"Free-text filter"
//	@Param			status	query		string	false	"Status filter or All"
//	@Param			sort	query		string	false	"Sort key"	Enums(newest, oldest, followupSoon)
//	@Success		200		{object}	tracker.Visible
//	@Security		BearerAuth
//	@Router			/jobs [get]
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := h.ctrl.Query()
	if params.Has("q") || params.Has("status") || params.Has("sort") {
		text := q.Text
		if params.Has("q") {
			text = params.Get("q")
		}
		status := q.Status
		if params.Has("status") {
			status = params.Get("status")
		}
		q = view.Refine(q, text, status, models.SortKey(params.Get("sort")))
	}
	writeJSON(w, http.StatusOK, h.ctrl.ViewOf(q))
}

// GetJob handles GET /api/jobs/{id}.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	j, ok := h.ctrl.Job(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, j)
}

// CreateJob handles POST /api/jobs.
//
//	@Summary		Create a job
//	@Tags			jobs
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateJobRequest	true	"Job to create"
//	@Success		201		{object}	models.JobRecord
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/jobs [post]
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	j, err := h.ctrl.Create(r.Context(), req.JobFields)
	if err != nil {
		writeError(w, "create job", err)
		return
	}
	writeJSON(w, http.StatusCreated, j)
}

// AddClipping handles POST /api/clippings with a Markdown body.
func (h *Handler) AddClipping(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}
	res, err := parser.Parse(data)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid clipping"))
		return
	}
	raw := res.Record()
	if t, _ := raw["title"].(string); t == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("clipping has no title"))
		return
	}
	j, err := h.ctrl.AddClipping(r.Context(), raw)
	if err != nil {
		writeError(w, "add clipping", err)
		return
	}
	writeJSON(w, http.StatusCreated, j)
}

// UpdateJob handles PATCH /api/jobs/{id}.
func (h *Handler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	var req UpdateJobRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.dispatchJob(w, r, "update job", tracker.EditJob{ID: chi.URLParam(r, "id"), Patch: req.JobPatch})
}

// SetStatus handles PUT /api/jobs/{id}/status.
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.dispatchJob(w, r, "set status", tracker.SetStatus{ID: chi.URLParam(r, "id"), Status: req.Status})
}

// BumpFollowUp handles POST /api/jobs/{id}/bump.
func (h *Handler) BumpFollowUp(w http.ResponseWriter, r *http.Request) {
	h.dispatchJob(w, r, "bump follow-up", tracker.BumpFollowUp{ID: chi.URLParam(r, "id")})
}

// EditNotes handles PUT /api/jobs/{id}/notes.
func (h *Handler) EditNotes(w http.ResponseWriter, r *http.Request) {
	var req NotesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.dispatchJob(w, r, "edit notes", tracker.EditNotes{ID: chi.URLParam(r, "id"), Notes: req.Notes})
}

// DeleteJob handles DELETE /api/jobs/{id}.
func (h *Handler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.Dispatch(r.Context(), tracker.DeleteJob{ID: chi.URLParam(r, "id")}); err != nil {
		writeError(w, "delete job", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearJobs handles DELETE /api/jobs.
func (h *Handler) ClearJobs(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.Dispatch(r.Context(), tracker.ClearJobs{}); err != nil {
		writeError(w, "clear jobs", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Emailed handles POST /api/jobs/{id}/emailed and returns the mailto link.
//
//	@Summary		Mark a job as emailed
//	@Tags			jobs
//	@Produce		json
//	@Param			id	path		string	true	"Job id"
//	@Success		200	{object}	URIResponse
//	@Failure		400	{object}	errResponse	"Job has no email address"
//	@Failure		404	{object}	errResponse
//	@Failure		409	{object}	errResponse	"Already emailed"
//	@Security		BearerAuth
//	@Router			/jobs/{id}/emailed [post]
func (h *Handler) Emailed(w http.ResponseWriter, r *http.Request) {
	uri, err := h.ctrl.Email(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "email", err)
		return
	}
	writeJSON(w, http.StatusOK, URIResponse{URI: uri})
}

// Called handles POST /api/jobs/{id}/called and returns the tel link.
func (h *Handler) Called(w http.ResponseWriter, r *http.Request) {
	uri, err := h.ctrl.Call(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "call", err)
		return
	}
	writeJSON(w, http.StatusOK, URIResponse{URI: uri})
}

// GetView handles GET /api/view.
func (h *Handler) GetView(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.Query())
}

// PutView handles PUT /api/view. A preset takes precedence over the
// text, status and sort fields.
func (h *Handler) PutView(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var cmd tracker.Command = tracker.SetQuery{Text: req.Q, Status: req.Status, Sort: req.Sort}
	if req.Preset != "" {
		cmd = tracker.ApplyPreset{Preset: req.Preset}
	}
	if err := h.ctrl.Dispatch(r.Context(), cmd); err != nil {
		writeError(w, "update view", err)
		return
	}
	writeJSON(w, http.StatusOK, h.ctrl.View())
}

// Actions handles GET /api/actions.
func (h *Handler) Actions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.Actions())
}

// GetChecklist handles GET /api/checklist.
func (h *Handler) GetChecklist(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.Checklist())
}

// ToggleChecklist handles PUT /api/checklist.
func (h *Handler) ToggleChecklist(w http.ResponseWriter, r *http.Request) {
	var req ChecklistRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.ctrl.Dispatch(r.Context(), tracker.ToggleChecklist{Key: req.Key, Checked: req.Checked}); err != nil {
		writeError(w, "toggle checklist", err)
		return
	}
	writeJSON(w, http.StatusOK, h.ctrl.Checklist())
}

// ResetChecklist handles POST /api/checklist/reset.
func (h *Handler) ResetChecklist(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.Dispatch(r.Context(), tracker.ResetChecklist{}); err != nil {
		writeError(w, "reset checklist", err)
		return
	}
	writeJSON(w, http.StatusOK, h.ctrl.Checklist())
}

// GetProfile handles GET /api/profile.
func (h *Handler) GetProfile(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.Profile())
}

// PutProfile handles PUT /api/profile.
func (h *Handler) PutProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.ctrl.Dispatch(r.Context(), tracker.SaveProfile{Profile: req.Profile}); err != nil {
		writeError(w, "save profile", err)
		return
	}
	writeJSON(w, http.StatusOK, h.ctrl.Profile())
}

// Export handles GET /api/export as a file download.
//
//	@Summary		Export jobs, checklist and profile
//	@Tags			snapshot
//	@Produce		json
//	@Success		200	{object}	models.Snapshot
//	@Security		BearerAuth
//	@Router			/export [get]
func (h *Handler) Export(w http.ResponseWriter, _ *http.Request) {
	s := h.ctrl.Export()
	data, err := snapshot.Encode(s)
	if err != nil {
		writeError(w, "export", err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+snapshot.FileName(exportTime(s))+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Import handles POST /api/import with an export file as the body.
//
//	@Summary		Replace state from an export file
//	@Tags			snapshot
//	@Accept			json
//	@Success		204	"Imported"
//	@Failure		422	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/import [post]
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}
	if err := h.ctrl.Import(r.Context(), data); err != nil {
		writeError(w, "import", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func exportTime(s models.Snapshot) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s.ExportedAt)
	if err != nil {
		return time.Now()
	}
	return t
}
