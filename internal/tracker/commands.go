package tracker

import (
	"fmt"
	"strings"

	"github.com/starford/jobtrail/internal/apperr"
	"github.com/starford/jobtrail/internal/calendar"
	"github.com/starford/jobtrail/internal/models"
	"github.com/starford/jobtrail/internal/snapshot"
	"github.com/starford/jobtrail/internal/view"
)

// Command is one user intent. Apply mutates s in place and reports which
// sections changed; zero sections means nothing happened. Commands that
// reference an unknown job id are silent no-ops.
type Command interface {
	Name() string
	Apply(s *State, env Env) (Sections, error)
}

// FollowUpBumpDays is how far BumpFollowUp moves the follow-up date.
const FollowUpBumpDays = 7

// JobFields are the user-editable fields of a job.
type JobFields struct {
	Title        string        `json:"title"`
	Company      string        `json:"company"`
	URL          string        `json:"url"`
	ContactName  string        `json:"contactName"`
	PosterEmail  string        `json:"posterEmail"`
	PosterMobile string        `json:"posterMobile"`
	AttachmentID string        `json:"attachmentId"`
	Status       models.Status `json:"status"`
	AppliedDate  string        `json:"appliedDate"`
	FollowUpDate string        `json:"followUpDate"`
	Notes        string        `json:"notes"`
}

// CreateJob inserts a new record at the front of the list.
// AttachmentName is the display name of Fields.AttachmentID, resolved by
// the caller against the attachment store.
type CreateJob struct {
	// ID is optional; an empty id is generated.
	ID             string
	Fields         JobFields
	AttachmentName string
}

func (CreateJob) Name() string { return "create_job" }

func (c CreateJob) Apply(s *State, env Env) (Sections, error) {
	f := c.Fields
	rec := models.JobRecord{
		ID:              c.ID,
		Title:           f.Title,
		Company:         f.Company,
		URL:             f.URL,
		ContactName:     f.ContactName,
		PosterEmail:     f.PosterEmail,
		PosterMobileRaw: f.PosterMobile,
		AttachmentID:    f.AttachmentID,
		AttachmentName:  c.AttachmentName,
		Status:          f.Status,
		AppliedDate:     f.AppliedDate,
		FollowUpDate:    f.FollowUpDate,
		Notes:           strings.TrimSpace(f.Notes),
		CreatedAt:       env.Now.UnixMilli(),
	}
	if strings.TrimSpace(rec.AppliedDate) == "" {
		rec.AppliedDate = env.Today()
	}
	env.Norm.Clean(&rec)
	if s.Find(rec.ID) >= 0 {
		return 0, fmt.Errorf("job %s: %w", rec.ID, apperr.ErrAlreadyExists)
	}
	s.Jobs = append([]models.JobRecord{rec}, s.Jobs...)
	s.Query.Mode = models.ActionNone
	return SectionJobs | SectionQuery, nil
}

// AddClipping creates a record from a loosely-typed object such as the
// frontmatter of a saved job posting. Any id in raw is replaced.
type AddClipping struct {
	ID  string
	Raw map[string]any
}

func (AddClipping) Name() string { return "add_clipping" }

func (c AddClipping) Apply(s *State, env Env) (Sections, error) {
	raw := make(map[string]any, len(c.Raw)+1)
	for k, v := range c.Raw {
		raw[k] = v
	}
	raw["id"] = c.ID
	if _, ok := raw["createdAt"]; !ok {
		raw["createdAt"] = env.Now.UnixMilli()
	}
	rec := env.Norm.Record(raw)
	if s.Find(rec.ID) >= 0 {
		return 0, fmt.Errorf("job %s: %w", rec.ID, apperr.ErrAlreadyExists)
	}
	s.Jobs = append([]models.JobRecord{rec}, s.Jobs...)
	s.Query.Mode = models.ActionNone
	return SectionJobs | SectionQuery, nil
}

// SetStatus changes a record's workflow status.
type SetStatus struct {
	ID     string
	Status models.Status
}

func (SetStatus) Name() string { return "set_status" }

func (c SetStatus) Apply(s *State, _ Env) (Sections, error) {
	if !c.Status.Valid() {
		return 0, fmt.Errorf("status %q: %w", c.Status, apperr.ErrInvalidInput)
	}
	i := s.Find(c.ID)
	if i < 0 || s.Jobs[i].Status == c.Status {
		return 0, nil
	}
	s.Jobs[i].Status = c.Status
	return SectionJobs, nil
}

// BumpFollowUp sets the follow-up date a week from today.
type BumpFollowUp struct{ ID string }

func (BumpFollowUp) Name() string { return "bump_follow_up" }

func (c BumpFollowUp) Apply(s *State, env Env) (Sections, error) {
	i := s.Find(c.ID)
	if i < 0 {
		return 0, nil
	}
	s.Jobs[i].FollowUpDate = calendar.AddDays(env.Now, FollowUpBumpDays)
	return SectionJobs, nil
}

// JobPatch holds the fields to change; nil fields are left alone.
type JobPatch struct {
	Title        *string        `json:"title,omitempty"`
	Company      *string        `json:"company,omitempty"`
	URL          *string        `json:"url,omitempty"`
	ContactName  *string        `json:"contactName,omitempty"`
	PosterEmail  *string        `json:"posterEmail,omitempty"`
	PosterMobile *string        `json:"posterMobile,omitempty"`
	Status       *models.Status `json:"status,omitempty"`
	AppliedDate  *string        `json:"appliedDate,omitempty"`
	FollowUpDate *string        `json:"followUpDate,omitempty"`
	Notes        *string        `json:"notes,omitempty"`
}

// EditJob updates fields of a record. Contact fields are normalized again,
// and an outreach flag is cleared when its contact field becomes empty.
type EditJob struct {
	ID    string
	Patch JobPatch
}

func (EditJob) Name() string { return "edit_job" }

func (c EditJob) Apply(s *State, env Env) (Sections, error) {
	p := c.Patch
	if p.Status != nil && !p.Status.Valid() {
		return 0, fmt.Errorf("status %q: %w", *p.Status, apperr.ErrInvalidInput)
	}
	i := s.Find(c.ID)
	if i < 0 {
		return 0, nil
	}
	before := s.Jobs[i]
	j := &s.Jobs[i]

	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&j.Title, p.Title)
	set(&j.Company, p.Company)
	set(&j.URL, p.URL)
	set(&j.ContactName, p.ContactName)
	set(&j.PosterEmail, p.PosterEmail)
	set(&j.PosterMobileRaw, p.PosterMobile)
	set(&j.AppliedDate, p.AppliedDate)
	set(&j.FollowUpDate, p.FollowUpDate)
	if p.Notes != nil {
		j.Notes = strings.TrimSpace(*p.Notes)
	}
	if p.Status != nil {
		j.Status = *p.Status
	}

	env.Norm.Clean(j)
	if j.PosterEmail == "" {
		j.Emailed = false
	}
	if j.PosterMobile == "" {
		j.Called = false
	}
	if *j == before {
		return 0, nil
	}
	return SectionJobs, nil
}

// EditNotes replaces a record's notes.
type EditNotes struct {
	ID    string
	Notes string
}

func (EditNotes) Name() string { return "edit_notes" }

func (c EditNotes) Apply(s *State, _ Env) (Sections, error) {
	notes := strings.TrimSpace(c.Notes)
	i := s.Find(c.ID)
	if i < 0 || s.Jobs[i].Notes == notes {
		return 0, nil
	}
	s.Jobs[i].Notes = notes
	return SectionJobs, nil
}

// DeleteJob removes a record. A linked attachment is left in place.
type DeleteJob struct{ ID string }

func (DeleteJob) Name() string { return "delete_job" }

func (c DeleteJob) Apply(s *State, _ Env) (Sections, error) {
	i := s.Find(c.ID)
	if i < 0 {
		return 0, nil
	}
	s.Jobs = append(s.Jobs[:i], s.Jobs[i+1:]...)
	return SectionJobs, nil
}

// MarkEmailed sets the one-way emailed flag. It does nothing when the flag
// is already set or the record has no email address.
type MarkEmailed struct{ ID string }

func (MarkEmailed) Name() string { return "mark_emailed" }

func (c MarkEmailed) Apply(s *State, _ Env) (Sections, error) {
	i := s.Find(c.ID)
	if i < 0 || s.Jobs[i].Emailed || !s.Jobs[i].HasEmail() {
		return 0, nil
	}
	s.Jobs[i].Emailed = true
	return SectionJobs, nil
}

// MarkCalled sets the one-way called flag. It does nothing when the flag
// is already set or the record has no phone number.
type MarkCalled struct{ ID string }

func (MarkCalled) Name() string { return "mark_called" }

func (c MarkCalled) Apply(s *State, _ Env) (Sections, error) {
	i := s.Find(c.ID)
	if i < 0 || s.Jobs[i].Called || !s.Jobs[i].HasPhone() {
		return 0, nil
	}
	s.Jobs[i].Called = true
	return SectionJobs, nil
}

// LinkAttachment points a record at an attachment. An empty AttachmentID
// removes the link.
type LinkAttachment struct {
	ID             string
	AttachmentID   string
	AttachmentName string
}

func (LinkAttachment) Name() string { return "link_attachment" }

func (c LinkAttachment) Apply(s *State, _ Env) (Sections, error) {
	i := s.Find(c.ID)
	if i < 0 {
		return 0, nil
	}
	j := &s.Jobs[i]
	id := strings.TrimSpace(c.AttachmentID)
	name := strings.TrimSpace(c.AttachmentName)
	if id == "" {
		name = ""
	}
	if j.AttachmentID == id && j.AttachmentName == name {
		return 0, nil
	}
	j.AttachmentID, j.AttachmentName = id, name
	return SectionJobs, nil
}

// UnlinkAttachment clears every reference to a deleted attachment.
type UnlinkAttachment struct{ AttachmentID string }

func (UnlinkAttachment) Name() string { return "unlink_attachment" }

func (c UnlinkAttachment) Apply(s *State, _ Env) (Sections, error) {
	if c.AttachmentID == "" {
		return 0, nil
	}
	var changed Sections
	for i := range s.Jobs {
		if s.Jobs[i].AttachmentID == c.AttachmentID {
			s.Jobs[i].AttachmentID = ""
			s.Jobs[i].AttachmentName = ""
			changed = SectionJobs
		}
	}
	return changed, nil
}

// ClearJobs removes every record and leaves any action mode.
type ClearJobs struct{}

func (ClearJobs) Name() string { return "clear_jobs" }

func (ClearJobs) Apply(s *State, _ Env) (Sections, error) {
	s.Jobs = []models.JobRecord{}
	s.Query.Mode = models.ActionNone
	return SectionJobs | SectionQuery, nil
}

// ToggleChecklist ticks or unticks one profile-maintenance item.
type ToggleChecklist struct {
	Key     string
	Checked bool
}

func (ToggleChecklist) Name() string { return "toggle_checklist" }

func (c ToggleChecklist) Apply(s *State, env Env) (Sections, error) {
	key := strings.TrimSpace(c.Key)
	if key == "" {
		return 0, fmt.Errorf("checklist key: %w", apperr.ErrInvalidInput)
	}
	s.Checklist.Checks[key] = c.Checked
	today := env.Today()
	s.Checklist.LastUpdated = &today
	return SectionChecklist, nil
}

// ResetChecklist unticks every item. Resetting counts as an update.
type ResetChecklist struct{}

func (ResetChecklist) Name() string { return "reset_checklist" }

func (ResetChecklist) Apply(s *State, env Env) (Sections, error) {
	today := env.Today()
	s.Checklist = models.ChecklistState{Checks: map[string]bool{}, LastUpdated: &today}
	return SectionChecklist, nil
}

// SaveProfile replaces the user's own name and email.
type SaveProfile struct{ Profile models.Profile }

func (SaveProfile) Name() string { return "save_profile" }

func (c SaveProfile) Apply(s *State, _ Env) (Sections, error) {
	p := models.Profile{
		Name:  strings.TrimSpace(c.Profile.Name),
		Email: strings.TrimSpace(c.Profile.Email),
	}
	if p == s.Profile {
		return 0, nil
	}
	s.Profile = p
	return SectionProfile, nil
}

// ImportSnapshot replaces every section present in the payload.
type ImportSnapshot struct{ Payload *snapshot.Payload }

func (ImportSnapshot) Name() string { return "import" }

func (c ImportSnapshot) Apply(s *State, _ Env) (Sections, error) {
	if c.Payload == nil {
		return 0, apperr.ErrInvalidImport
	}
	changed := SectionQuery
	if c.Payload.Jobs != nil {
		s.Jobs = c.Payload.Jobs
		changed |= SectionJobs
	}
	if c.Payload.Checklist != nil {
		s.Checklist = *c.Payload.Checklist
		changed |= SectionChecklist
	}
	if c.Payload.Profile != nil {
		s.Profile = *c.Payload.Profile
		changed |= SectionProfile
	}
	s.Query.Mode = models.ActionNone
	return changed, nil
}

// SetQuery refines the view query. Changing the text or status filter
// leaves any action mode.
type SetQuery struct {
	Text   string
	Status string
	Sort   models.SortKey
}

func (SetQuery) Name() string { return "set_query" }

func (c SetQuery) Apply(s *State, _ Env) (Sections, error) {
	if c.Sort != "" && !c.Sort.Valid() {
		return 0, fmt.Errorf("sort %q: %w", c.Sort, apperr.ErrInvalidInput)
	}
	if c.Status != "" && c.Status != models.StatusAll && !models.Status(c.Status).Valid() {
		return 0, fmt.Errorf("status %q: %w", c.Status, apperr.ErrInvalidInput)
	}
	next := view.Refine(s.Query, c.Text, c.Status, c.Sort)
	if next == s.Query {
		return 0, nil
	}
	s.Query = next
	return SectionQuery, nil
}

// ApplyPreset switches the view into or out of an action mode.
type ApplyPreset struct{ Preset string }

func (ApplyPreset) Name() string { return "apply_preset" }

func (c ApplyPreset) Apply(s *State, _ Env) (Sections, error) {
	switch c.Preset {
	case view.PresetFollowUps, view.PresetStaleApplied, view.PresetClear:
	default:
		return 0, fmt.Errorf("preset %q: %w", c.Preset, apperr.ErrInvalidInput)
	}
	next := view.ApplyPreset(s.Query, c.Preset)
	if next == s.Query {
		return 0, nil
	}
	s.Query = next
	return SectionQuery, nil
}
