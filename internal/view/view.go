// Package view derives the visible job list and the "today's actions"
// summary from the full record set. Every function here is pure.
package view

import (
	"slices"
	"strings"

	"github.com/starford/jobtrail/internal/calendar"
	"github.com/starford/jobtrail/internal/models"
)

// StaleAfterDays is the age at which an Applied record counts as stale.
const StaleAfterDays = 10

// ProfileOverdueDays is the checklist age at which profiles are overdue.
const ProfileOverdueDays = 14

// FollowUpDue reports whether a record's follow-up date has arrived.
// Closed applications and unparseable dates never qualify.
func FollowUpDue(j *models.JobRecord, today string) bool {
	if j.Status.Closed() {
		return false
	}
	due, ok := calendar.OnOrBefore(j.FollowUpDate, today)
	return ok && due
}

// StaleApplied reports whether an Applied record has waited at least
// StaleAfterDays since its applied date.
func StaleApplied(j *models.JobRecord, today string) bool {
	if j.Status != models.StatusApplied {
		return false
	}
	d, ok := calendar.DaysBetween(j.AppliedDate, today)
	return ok && d >= StaleAfterDays
}

// Filter returns the ordered visible subset of jobs for q. The input
// slice is never modified.
//
// Action mode, status and text filters narrow by intersection; the sort is
// applied last and is stable.
func Filter(jobs []models.JobRecord, q models.Query, today string) []models.JobRecord {
	needle := strings.ToLower(strings.TrimSpace(q.Text))

	out := make([]models.JobRecord, 0, len(jobs))
	for i := range jobs {
		j := &jobs[i]
		switch q.Mode {
		case models.ActionFollowUpsDue:
			if !FollowUpDue(j, today) {
				continue
			}
		case models.ActionStaleApplied:
			if !StaleApplied(j, today) {
				continue
			}
		}
		if q.Status != "" && q.Status != models.StatusAll && string(j.Status) != q.Status {
			continue
		}
		if needle != "" && !strings.Contains(haystack(j), needle) {
			continue
		}
		out = append(out, *j)
	}

	sortJobs(out, q.Sort)
	return out
}

func haystack(j *models.JobRecord) string {
	return strings.ToLower(strings.Join([]string{
		j.Title,
		j.Company,
		j.Notes,
		j.ContactName,
		j.PosterEmail,
		j.PosterMobileRaw,
		j.AttachmentName,
	}, " "))
}

func sortJobs(jobs []models.JobRecord, key models.SortKey) {
	switch key {
	case models.SortNewest:
		slices.SortStableFunc(jobs, func(a, b models.JobRecord) int {
			return cmpInt64(b.CreatedAt, a.CreatedAt)
		})
	case models.SortOldest:
		slices.SortStableFunc(jobs, func(a, b models.JobRecord) int {
			return cmpInt64(a.CreatedAt, b.CreatedAt)
		})
	case models.SortFollowUpSoon:
		slices.SortStableFunc(jobs, func(a, b models.JobRecord) int {
			_, okA := calendar.Parse(a.FollowUpDate)
			_, okB := calendar.Parse(b.FollowUpDate)
			switch {
			case !okA && !okB:
				return 0
			case !okA:
				return 1
			case !okB:
				return -1
			}
			d, _ := calendar.DaysBetween(b.FollowUpDate, a.FollowUpDate)
			return d
		})
	}
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
