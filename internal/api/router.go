package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/jobtrail/internal/tracker"
)

// RouterConfig holds the options for NewRouter.
type RouterConfig struct {
	// AuthEnabled controls whether Bearer token auth is enforced.
	AuthEnabled bool
	Token       string
	// Events, if non-nil, is mounted at GET /events inside the auth group.
	Events http.Handler
	// MaxUploadBytes caps attachment uploads.
	MaxUploadBytes int64
}

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(ctrl *tracker.Controller, cfg RouterConfig) chi.Router {
	h := NewHandler(ctrl)
	ah := NewAttachmentHandler(ctrl, cfg.MaxUploadBytes)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(cfg.AuthEnabled, cfg.Token))

	// Jobs.
	r.Get("/jobs", h.ListJobs)
	r.Post("/jobs", h.CreateJob)
	r.Delete("/jobs", h.ClearJobs)
	r.Route("/jobs/{id}", func(r chi.Router) {
		r.Get("/", h.GetJob)
		r.Patch("/", h.UpdateJob)
		r.Delete("/", h.DeleteJob)
		r.Put("/status", h.SetStatus)
		r.Post("/bump", h.BumpFollowUp)
		r.Put("/notes", h.EditNotes)
		r.Post("/emailed", h.Emailed)
		r.Post("/called", h.Called)
		r.Put("/attachment", ah.Link)
		r.Get("/attachment", ah.OpenForJob)
	})
	r.Post("/clippings", h.AddClipping)

	// View state and derived actions.
	r.Get("/view", h.GetView)
	r.Put("/view", h.PutView)
	r.Get("/actions", h.Actions)

	// Checklist and profile.
	r.Get("/checklist", h.GetChecklist)
	r.Put("/checklist", h.ToggleChecklist)
	r.Post("/checklist/reset", h.ResetChecklist)
	r.Get("/profile", h.GetProfile)
	r.Put("/profile", h.PutProfile)

	// Snapshot.
	r.Get("/export", h.Export)
	r.Post("/import", h.Import)

	// Attachments.
	r.Get("/attachments", ah.List)
	r.Post("/attachments", ah.Upload)
	r.Get("/attachments/{attachmentID}", ah.Open)
	r.Delete("/attachments/{attachmentID}", ah.Delete)
	r.Get("/leases/{token}", ah.ServeLease)

	// SSE endpoint (protected by same auth middleware).
	if cfg.Events != nil {
		r.Get("/events", cfg.Events.ServeHTTP)
	}

	return r
}
