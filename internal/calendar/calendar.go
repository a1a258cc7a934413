// Package calendar implements date-only arithmetic on ISO "YYYY-MM-DD" strings.
package calendar

import (
	"time"
)

// Layout is the ISO date-only layout used for every stored date.
const Layout = "2006-01-02"

// Parse returns local midnight of an ISO date. ok is false for empty or
// malformed input.
func Parse(iso string) (t time.Time, ok bool) {
	if iso == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(Layout, iso, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Format renders the calendar date of t in its own location.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Today returns the local calendar date of now.
func Today(now time.Time) string {
	return Format(now.In(time.Local))
}

// AddDays returns the local calendar date n days after now.
func AddDays(now time.Time, n int) string {
	local := now.In(time.Local)
	return Format(time.Date(local.Year(), local.Month(), local.Day()+n, 0, 0, 0, 0, time.Local))
}

// DaysBetween returns the whole calendar days from older to newer.
// ok is false when either date does not parse.
//
// The difference is taken on the calendar dates themselves, so a DST shift
// between the two midnights never loses or gains a day.
func DaysBetween(older, newer string) (days int, ok bool) {
	a, okA := Parse(older)
	b, okB := Parse(newer)
	if !okA || !okB {
		return 0, false
	}
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua) / (24 * time.Hour)), true
}

// OnOrBefore reports whether date falls on or before ref. ok is false when
// either date does not parse.
func OnOrBefore(date, ref string) (before, ok bool) {
	d, ok := DaysBetween(date, ref)
	if !ok {
		return false, false
	}
	return d >= 0, true
}
