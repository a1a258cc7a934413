package view

import "github.com/starford/jobtrail/internal/models"

// Preset names accepted by ApplyPreset.
const (
	PresetFollowUps    = "followups"
	PresetStaleApplied = "staleApplied"
	PresetClear        = "clear"
)

// ApplyPreset returns the query state after choosing an action preset.
// Entering a mode clears the text and status filters and picks the sort
// that surfaces the most urgent records first. Unknown presets leave the
// query unchanged.
func ApplyPreset(q models.Query, preset string) models.Query {
	switch preset {
	case PresetFollowUps:
		return models.Query{Status: models.StatusAll, Sort: models.SortFollowUpSoon, Mode: models.ActionFollowUpsDue}
	case PresetStaleApplied:
		return models.Query{Status: models.StatusAll, Sort: models.SortOldest, Mode: models.ActionStaleApplied}
	case PresetClear:
		q.Mode = models.ActionNone
	}
	return q
}

// Refine updates the text, status and sort of q. Changing the text or
// status filter leaves any action mode; changing only the sort keeps it.
func Refine(q models.Query, text, status string, sort models.SortKey) models.Query {
	if status == "" {
		status = models.StatusAll
	}
	if text != q.Text || status != q.Status {
		q.Mode = models.ActionNone
	}
	q.Text = text
	q.Status = status
	if sort != "" {
		q.Sort = sort
	}
	return q
}
