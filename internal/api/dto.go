package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/jobtrail/internal/calendar"
	"github.com/starford/jobtrail/internal/models"
	"github.com/starford/jobtrail/internal/tracker"
	"github.com/starford/jobtrail/internal/view"
)

func statusValues() []interface{} {
	out := make([]interface{}, len(models.Statuses))
	for i, s := range models.Statuses {
		out[i] = s
	}
	return out
}

var isoDate = validation.Date(calendar.Layout).Error("must be a date in YYYY-MM-DD format")

// CreateJobRequest is the request body for creating a job.
type CreateJobRequest struct {
	tracker.JobFields
}

// Validate validates the request.
func (r *CreateJobRequest) Validate() error {
	return validation.ValidateStruct(&r.JobFields,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 300)),
		validation.Field(&r.Company, validation.Required, validation.Length(1, 300)),
		validation.Field(&r.Status, validation.In(statusValues()...)),
		validation.Field(&r.AppliedDate, isoDate),
		validation.Field(&r.FollowUpDate, isoDate),
	)
}

// UpdateJobRequest is the request body for a partial job update.
type UpdateJobRequest struct {
	tracker.JobPatch
}

// Validate validates the request.
func (r *UpdateJobRequest) Validate() error {
	return validation.ValidateStruct(&r.JobPatch,
		validation.Field(&r.Title, validation.NilOrNotEmpty),
		validation.Field(&r.Company, validation.NilOrNotEmpty),
		validation.Field(&r.Status, validation.In(statusValues()...)),
		validation.Field(&r.AppliedDate, isoDate),
		validation.Field(&r.FollowUpDate, isoDate),
	)
}

// StatusRequest is the request body for changing a job's status.
type StatusRequest struct {
	Status models.Status `json:"status" example:"Applied" validate:"required"`
}

// Validate validates the request.
func (r *StatusRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Status, validation.Required, validation.In(statusValues()...)),
	)
}

// NotesRequest is the request body for replacing a job's notes.
type NotesRequest struct {
	Notes string `json:"notes"`
}

// Validate validates the request.
func (r *NotesRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Notes, validation.Length(0, 100_000)),
	)
}

// LinkRequest links a job to an attachment; an empty id unlinks.
type LinkRequest struct {
	AttachmentID string `json:"attachmentId"`
}

// Validate validates the request.
func (r *LinkRequest) Validate() error { return nil }

// QueryRequest updates the view query or applies an action preset.
type QueryRequest struct {
	Q      string         `json:"q"`
	Status string         `json:"status"`
	Sort   models.SortKey `json:"sort"`
	Preset string         `json:"preset"`
}

// Validate validates the request.
func (r *QueryRequest) Validate() error {
	statuses := append([]interface{}{models.StatusAll}, stringStatuses()...)
	return validation.ValidateStruct(r,
		validation.Field(&r.Status, validation.In(statuses...)),
		validation.Field(&r.Sort, validation.In(models.SortNewest, models.SortOldest, models.SortFollowUpSoon)),
		validation.Field(&r.Preset, validation.In(view.PresetFollowUps, view.PresetStaleApplied, view.PresetClear)),
	)
}

func stringStatuses() []interface{} {
	out := make([]interface{}, len(models.Statuses))
	for i, s := range models.Statuses {
		out[i] = string(s)
	}
	return out
}

// ChecklistRequest ticks or unticks one checklist item.
type ChecklistRequest struct {
	Key     string `json:"key" example:"linkedin" validate:"required"`
	Checked bool   `json:"checked"`
}

// Validate validates the request.
func (r *ChecklistRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Key, validation.Required, validation.Length(1, 100)),
	)
}

// ProfileRequest replaces the user's profile.
type ProfileRequest struct {
	models.Profile
}

// Validate validates the request.
func (r *ProfileRequest) Validate() error {
	return validation.ValidateStruct(&r.Profile,
		validation.Field(&r.Name, validation.Length(0, 200)),
		validation.Field(&r.Email, validation.Length(0, 320)),
	)
}

// URIResponse carries an outreach link for the client to launch.
type URIResponse struct {
	URI string `json:"uri" example:"mailto:hr%40acme.io?subject=..." validate:"required"`
}

// LeaseResponse describes a granted download lease.
type LeaseResponse struct {
	Token       string `json:"token" validate:"required"`
	URL         string `json:"url" example:"/api/leases/4b1c..." validate:"required"`
	Name        string `json:"name"`
	MIME        string `json:"mime"`
	Disposition string `json:"disposition"`
	ExpiresAt   string `json:"expiresAt"`
}

// HealthResponse is returned by the readiness probe.
type HealthResponse struct {
	Status      string `json:"status"`
	Attachments bool   `json:"attachments"`
}
