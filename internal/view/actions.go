package view

import (
	"github.com/starford/jobtrail/internal/calendar"
	"github.com/starford/jobtrail/internal/models"
)

// Actions is the "today's actions" summary over the full record set.
type Actions struct {
	FollowUpsDue   []models.JobRecord `json:"followUpsDue"`
	StaleApplied   []models.JobRecord `json:"staleApplied"`
	ProfileOverdue bool               `json:"profileOverdue"`
}

// FollowUpCount returns the number of due follow-ups.
func (a Actions) FollowUpCount() int { return len(a.FollowUpsDue) }

// StaleCount returns the number of stale Applied records.
func (a Actions) StaleCount() int { return len(a.StaleApplied) }

// TodaysActions computes the summary independently of any view filter.
func TodaysActions(jobs []models.JobRecord, checklist models.ChecklistState, today string) Actions {
	a := Actions{
		FollowUpsDue: []models.JobRecord{},
		StaleApplied: []models.JobRecord{},
	}
	for i := range jobs {
		j := &jobs[i]
		if FollowUpDue(j, today) {
			a.FollowUpsDue = append(a.FollowUpsDue, *j)
		}
		if StaleApplied(j, today) {
			a.StaleApplied = append(a.StaleApplied, *j)
		}
	}
	a.ProfileOverdue = ProfileOverdue(checklist, today)
	return a
}

// ProfileOverdue reports whether the profile checklist needs attention.
//
// Unlike the follow-up and stale predicates, an unparseable date counts
// as overdue here rather than abstaining.
func ProfileOverdue(checklist models.ChecklistState, today string) bool {
	if checklist.LastUpdated == nil || *checklist.LastUpdated == "" {
		return true
	}
	d, ok := calendar.DaysBetween(*checklist.LastUpdated, today)
	if !ok {
		return true
	}
	return d >= ProfileOverdueDays
}
