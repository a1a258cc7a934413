// Package normalize repairs job records decoded from storage or imported
// files so that every field is present with the right type.
//
// Records from older schema versions are migrated on the way through:
// the display phone number is back-filled from the dialable one and the
// legacy cvId/cvName reference is renamed to attachmentId/attachmentName.
package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/jobtrail/internal/calendar"
	"github.com/starford/jobtrail/internal/models"
)

// Normalizer fills defaults that depend on the environment.
type Normalizer struct {
	Now   func() time.Time
	NewID func() string
}

// New returns a Normalizer using the wall clock and random UUIDs.
func New() *Normalizer {
	return &Normalizer{Now: time.Now, NewID: uuid.NewString}
}

// Record builds a valid JobRecord from an arbitrary decoded object.
// Normalizing an already-normalized record returns it unchanged.
func (n *Normalizer) Record(raw map[string]any) models.JobRecord {
	rec := models.JobRecord{
		ID:           Text(raw["id"]),
		Title:        Text(raw["title"]),
		Company:      Text(raw["company"]),
		URL:          Text(raw["url"]),
		ContactName:  Text(raw["contactName"]),
		PosterEmail:  Text(raw["posterEmail"]),
		Status:       models.Status(Text(raw["status"])),
		AppliedDate:  Text(raw["appliedDate"]),
		FollowUpDate: Text(raw["followUpDate"]),
		Notes:        notes(raw["notes"]),
	}

	rec.PosterMobileRaw = Text(raw["posterMobileRaw"])
	if strings.TrimSpace(rec.PosterMobileRaw) == "" {
		rec.PosterMobileRaw = Text(raw["posterMobile"])
	}

	if v, ok := raw["attachmentId"]; ok {
		rec.AttachmentID = Text(v)
		rec.AttachmentName = Text(raw["attachmentName"])
	} else {
		rec.AttachmentID = Text(raw["cvId"])
		rec.AttachmentName = Text(raw["cvName"])
	}

	rec.Emailed, _ = raw["emailed"].(bool)
	rec.Called, _ = raw["called"].(bool)

	if ms, ok := millis(raw["createdAt"]); ok {
		rec.CreatedAt = ms
	} else {
		rec.CreatedAt = n.Now().UnixMilli()
	}

	n.Clean(&rec)
	return rec
}

// notes treats every falsy value as an empty note.
func notes(v any) string {
	switch x := v.(type) {
	case bool:
		if !x {
			return ""
		}
	case float64:
		if x == 0 {
			return ""
		}
	case int:
		if x == 0 {
			return ""
		}
	case json.Number:
		if f, err := x.Float64(); err == nil && f == 0 {
			return ""
		}
	}
	return Text(v)
}

// Clean re-applies the field invariants to a typed record in place.
func (n *Normalizer) Clean(rec *models.JobRecord) {
	rec.ID = strings.TrimSpace(rec.ID)
	if rec.ID == "" {
		rec.ID = n.NewID()
	}
	rec.Title = strings.TrimSpace(rec.Title)
	rec.Company = strings.TrimSpace(rec.Company)
	rec.URL = strings.TrimSpace(rec.URL)
	rec.ContactName = strings.TrimSpace(rec.ContactName)
	rec.PosterEmail = Email(rec.PosterEmail)
	rec.PosterMobileRaw = strings.TrimSpace(rec.PosterMobileRaw)
	rec.PosterMobile = Phone(rec.PosterMobileRaw)
	rec.AppliedDate = strings.TrimSpace(rec.AppliedDate)
	rec.FollowUpDate = strings.TrimSpace(rec.FollowUpDate)

	rec.AttachmentID = strings.TrimSpace(rec.AttachmentID)
	rec.AttachmentName = strings.TrimSpace(rec.AttachmentName)
	if rec.AttachmentID == "" {
		rec.AttachmentName = ""
	}

	rec.Status = canonicalStatus(rec.Status)
}

// Records normalizes every object in list. Entries that are not objects
// cannot be repaired and are dropped.
func (n *Normalizer) Records(list []any) []models.JobRecord {
	out := make([]models.JobRecord, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, n.Record(obj))
	}
	return out
}

// DecodeRecords parses a JSON array of records and normalizes each one.
func (n *Normalizer) DecodeRecords(data []byte) ([]models.JobRecord, error) {
	var list []any
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("normalize: decode records: %w", err)
	}
	return n.Records(list), nil
}

// Checklist builds a ChecklistState from an arbitrary decoded value.
func Checklist(raw any) models.ChecklistState {
	state := models.NewChecklistState()
	obj, ok := raw.(map[string]any)
	if !ok {
		return state
	}
	if checks, ok := obj["checks"].(map[string]any); ok {
		for k, v := range checks {
			state.Checks[k] = truthy(v)
		}
	}
	if s := Text(obj["lastUpdated"]); s != "" {
		state.LastUpdated = &s
	}
	return state
}

// Profile builds a Profile from an arbitrary decoded value.
func Profile(raw any) models.Profile {
	obj, ok := raw.(map[string]any)
	if !ok {
		return models.Profile{}
	}
	return models.Profile{
		Name:  strings.TrimSpace(Text(obj["name"])),
		Email: strings.TrimSpace(Text(obj["email"])),
	}
}

// Email trims and lower-cases an email address.
func Email(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// Phone keeps only the digits and plus signs of a phone number.
func Phone(v string) string {
	v = strings.TrimSpace(v)
	var b strings.Builder
	b.Grow(len(v))
	for _, r := range v {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Text coerces a decoded JSON or YAML value to a string. Missing and null
// values become "".
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case time.Time:
		return calendar.Format(t)
	case fmt.Stringer:
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

func canonicalStatus(s models.Status) models.Status {
	trimmed := strings.TrimSpace(string(s))
	for _, v := range models.Statuses {
		if strings.EqualFold(trimmed, string(v)) {
			return v
		}
	}
	return models.StatusSaved
}

func millis(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		return int64(t), true
	case int:
		return int64(t), true
	case int64:
		return t, true
	case uint64:
		return int64(t), true
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, true
		}
		if f, err := t.Float64(); err == nil {
			return int64(f), true
		}
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
			return i, true
		}
	case time.Time:
		return t.UnixMilli(), true
	}
	return 0, false
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	default:
		return true
	}
}
