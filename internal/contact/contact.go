// Package contact builds the mailto: and tel: targets for outreach actions.
package contact

import (
	"net/url"
	"strings"

	"github.com/starford/jobtrail/internal/models"
)

// FirstName returns the first whitespace-separated token of name.
func FirstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Subject builds the follow-up email subject for a job.
func Subject(job *models.JobRecord, profile models.Profile) string {
	title := job.Title
	if title == "" {
		title = "Role"
	}
	subject := title
	if job.Company != "" {
		subject += " - " + job.Company
	}
	if me := strings.TrimSpace(profile.Name); me != "" {
		subject += " | " + me
	}
	return subject
}

// Body builds the follow-up email body for a job.
func Body(job *models.JobRecord, profile models.Profile) string {
	var b strings.Builder

	if first := FirstName(job.ContactName); first != "" {
		b.WriteString("Hi " + first + ",")
	} else {
		b.WriteString("Hi,")
	}

	role := job.Title
	if role == "" {
		role = "role"
	}
	b.WriteString("\n\nI'm following up regarding the " + role)
	if job.Company != "" {
		b.WriteString(" at " + job.Company)
	}
	b.WriteString(".")

	b.WriteString("\n\nThanks,")
	if me := strings.TrimSpace(profile.Name); me != "" {
		b.WriteString("\n" + me)
	}
	b.WriteString("\n")
	return b.String()
}

// MailtoURI returns the email-compose target for job. ok is false when
// the job has no poster email.
func MailtoURI(job *models.JobRecord, profile models.Profile) (uri string, ok bool) {
	if !job.HasEmail() {
		return "", false
	}
	uri = "mailto:" + encode(job.PosterEmail) +
		"?subject=" + encode(Subject(job, profile)) +
		"&body=" + encode(Body(job, profile))
	if cc := strings.TrimSpace(profile.Email); cc != "" {
		uri += "&cc=" + encode(cc)
	}
	return uri, true
}

// TelURI returns the dial target for job. ok is false when the job has no
// dialable phone number.
func TelURI(job *models.JobRecord) (uri string, ok bool) {
	if !job.HasPhone() {
		return "", false
	}
	return "tel:" + job.PosterMobile, true
}

// encode percent-encodes s as a URI component. Spaces become %20 rather
// than '+', which mail clients do not decode in mailto: headers.
func encode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
