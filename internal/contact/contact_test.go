package contact

import (
	"net/url"
	"strings"
	"testing"

	"github.com/starford/jobtrail/internal/models"
)

func TestMailtoURI_WithProfile(t *testing.T) {
	job := &models.JobRecord{
		Title:       "Platform Engineer",
		Company:     "Acme & Sons",
		ContactName: "  Dana   Scully ",
		PosterEmail: "dana@acme.io",
	}
	profile := models.Profile{Name: "Fox Mulder", Email: "fox@x.files"}

	uri, ok := MailtoURI(job, profile)
	if !ok {
		t.Fatal("expected mailto target")
	}
	if !strings.HasPrefix(uri, "mailto:dana%40acme.io?subject=") {
		t.Errorf("uri = %q", uri)
	}
	if strings.Contains(uri, "+") {
		t.Errorf("spaces must be %%20-encoded: %q", uri)
	}

	q, err := url.ParseQuery(strings.SplitN(uri, "?", 2)[1])
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}
	if got := q.Get("subject"); got != "Platform Engineer - Acme & Sons | Fox Mulder" {
		t.Errorf("subject = %q", got)
	}
	wantBody := "Hi Dana,\n\nI'm following up regarding the Platform Engineer at Acme & Sons.\n\nThanks,\nFox Mulder\n"
	if got := q.Get("body"); got != wantBody {
		t.Errorf("body = %q", got)
	}
	if got := q.Get("cc"); got != "fox@x.files" {
		t.Errorf("cc = %q", got)
	}
}

func TestMailtoURI_Generic(t *testing.T) {
	job := &models.JobRecord{PosterEmail: "hr@corp.io"}
	uri, ok := MailtoURI(job, models.Profile{})
	if !ok {
		t.Fatal("expected mailto target")
	}
	q, _ := url.ParseQuery(strings.SplitN(uri, "?", 2)[1])
	if q.Get("subject") != "Role" {
		t.Errorf("subject = %q", q.Get("subject"))
	}
	if q.Get("body") != "Hi,\n\nI'm following up regarding the role.\n\nThanks,\n" {
		t.Errorf("body = %q", q.Get("body"))
	}
	if q.Has("cc") {
		t.Error("cc should be absent without a profile email")
	}
}

func TestNoEmailNoAction(t *testing.T) {
	job := &models.JobRecord{Emailed: true}
	if _, ok := MailtoURI(job, models.Profile{}); ok {
		t.Error("a job without an email must never offer email outreach")
	}
}

func TestTelURI(t *testing.T) {
	if _, ok := TelURI(&models.JobRecord{PosterMobileRaw: "call me"}); ok {
		t.Error("expected no dial target without digits")
	}
	uri, ok := TelURI(&models.JobRecord{PosterMobile: "+61400111222"})
	if !ok || uri != "tel:+61400111222" {
		t.Errorf("tel = %q, %v", uri, ok)
	}
}

func TestFirstName(t *testing.T) {
	if FirstName("") != "" || FirstName(" Ana María ") != "Ana" {
		t.Error("unexpected first name")
	}
}
