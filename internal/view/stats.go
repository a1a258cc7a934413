package view

import "github.com/starford/jobtrail/internal/models"

// Stats counts the visible records per status.
type Stats struct {
	Total    int                   `json:"total"`
	ByStatus map[models.Status]int `json:"byStatus"`
}

// Count builds Stats for a visible list.
func Count(jobs []models.JobRecord) Stats {
	s := Stats{Total: len(jobs), ByStatus: make(map[models.Status]int, len(models.Statuses))}
	for _, st := range models.Statuses {
		s.ByStatus[st] = 0
	}
	for i := range jobs {
		s.ByStatus[jobs[i].Status]++
	}
	return s
}

// Tone is the badge styling hint for a status.
type Tone string

const (
	ToneNeutral Tone = ""
	ToneGood    Tone = "good"
	ToneWarn    Tone = "warn"
	ToneBad     Tone = "bad"
)

// BadgeTone maps a status to its badge tone.
func BadgeTone(s models.Status) Tone {
	switch s {
	case models.StatusOffer:
		return ToneGood
	case models.StatusInterview:
		return ToneWarn
	case models.StatusRejected, models.StatusWithdrawn:
		return ToneBad
	}
	return ToneNeutral
}
