// Package snapshot converts tracker state to and from the portable export
// file. Attachment content is never part of a snapshot.
package snapshot

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/starford/jobtrail/internal/apperr"
	"github.com/starford/jobtrail/internal/calendar"
	"github.com/starford/jobtrail/internal/models"
	"github.com/starford/jobtrail/internal/normalize"
)

// Export builds a snapshot of the given state.
func Export(jobs []models.JobRecord, checklist models.ChecklistState, profile models.Profile, now time.Time) models.Snapshot {
	if jobs == nil {
		jobs = []models.JobRecord{}
	}
	if checklist.Checks == nil {
		checklist.Checks = map[string]bool{}
	}
	return models.Snapshot{
		ExportedAt: now.UTC().Format(time.RFC3339Nano),
		Jobs:       jobs,
		Checklist:  checklist,
		Profile:    profile,
	}
}

// Encode renders a snapshot as indented JSON.
func Encode(s models.Snapshot) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// FileName is the suggested download name for an export taken at now.
func FileName(now time.Time) string {
	return "job-tracker-export-" + calendar.Today(now) + ".json"
}

// Payload is the recognized content of an import. Nil sections were absent
// or malformed and must leave the current state for that section alone.
type Payload struct {
	Jobs      []models.JobRecord
	Checklist *models.ChecklistState
	Profile   *models.Profile
}

// Decode parses an import payload and normalizes every record.
//
// Unknown top-level keys are ignored. At least one of jobs (array),
// checklist (object) or profile (object) must be present and well-typed;
// otherwise the payload is rejected with apperr.ErrInvalidImport.
func Decode(data []byte, norm *normalize.Normalizer) (*Payload, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidImport, err)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top level is not an object", apperr.ErrInvalidImport)
	}

	p := &Payload{}
	recognized := false

	if list, ok := obj["jobs"].([]any); ok {
		p.Jobs = norm.Records(list)
		recognized = true
	}
	if cl, ok := obj["checklist"].(map[string]any); ok {
		state := normalize.Checklist(cl)
		p.Checklist = &state
		recognized = true
	}
	if pr, ok := obj["profile"].(map[string]any); ok {
		profile := normalize.Profile(pr)
		p.Profile = &profile
		recognized = true
	}

	if !recognized {
		return nil, fmt.Errorf("%w: no jobs, checklist or profile section", apperr.ErrInvalidImport)
	}
	return p, nil
}
