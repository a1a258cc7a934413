// Package models defines the domain types for Jobtrail.
package models

// Status is the workflow state of a job application.
type Status string

const (
	StatusSaved     Status = "Saved"
	StatusApplied   Status = "Applied"
	StatusInterview Status = "Interview"
	StatusOffer     Status = "Offer"
	StatusRejected  Status = "Rejected"
	StatusWithdrawn Status = "Withdrawn"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{
	StatusSaved,
	StatusApplied,
	StatusInterview,
	StatusOffer,
	StatusRejected,
	StatusWithdrawn,
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Closed reports whether the application is finished from the applicant's
// side; closed applications never have a follow-up due.
func (s Status) Closed() bool {
	return s == StatusRejected || s == StatusWithdrawn
}

// JobRecord is one tracked job application.
//
// Dates are ISO "YYYY-MM-DD" strings; absence is the empty string.
// CreatedAt is milliseconds since the Unix epoch.
type JobRecord struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Company string `json:"company"`
	URL     string `json:"url"`

	ContactName     string `json:"contactName"`
	PosterEmail     string `json:"posterEmail"`
	PosterMobile    string `json:"posterMobile"`
	PosterMobileRaw string `json:"posterMobileRaw"`

	AttachmentID   string `json:"attachmentId"`
	AttachmentName string `json:"attachmentName"`

	Emailed bool `json:"emailed"`
	Called  bool `json:"called"`

	Status       Status `json:"status"`
	AppliedDate  string `json:"appliedDate"`
	FollowUpDate string `json:"followUpDate"`
	Notes        string `json:"notes"`
	CreatedAt    int64  `json:"createdAt"`
}

// HasEmail reports whether an email outreach action can be offered.
func (j *JobRecord) HasEmail() bool { return j.PosterEmail != "" }

// HasPhone reports whether a call outreach action can be offered.
func (j *JobRecord) HasPhone() bool { return j.PosterMobile != "" }

// ChecklistState records which profile-maintenance items are ticked.
// LastUpdated is an ISO date or nil when the checklist was never touched.
type ChecklistState struct {
	Checks      map[string]bool `json:"checks"`
	LastUpdated *string         `json:"lastUpdated"`
}

// NewChecklistState returns an empty, never-updated checklist.
func NewChecklistState() ChecklistState {
	return ChecklistState{Checks: map[string]bool{}}
}

// Profile holds the user's own identity used for outreach emails.
type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Snapshot is the portable export format.
type Snapshot struct {
	ExportedAt string         `json:"exportedAt"`
	Jobs       []JobRecord    `json:"jobs"`
	Checklist  ChecklistState `json:"checklist"`
	Profile    Profile        `json:"profile"`
}
