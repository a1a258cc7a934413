package lease

import (
	"testing"
	"time"

	"github.com/starford/jobtrail/internal/models"
)

func testAttachment() *models.Attachment {
	return &models.Attachment{
		AttachmentMeta: models.AttachmentMeta{ID: "a1", Name: "CV", MIME: "application/pdf", Size: 3},
		Content:        []byte("pdf"),
	}
}

func TestAcquireAndRelease(t *testing.T) {
	r := New()
	defer r.Close()

	att := testAttachment()
	l := r.Acquire(att, Inline, time.Minute)
	att.Content[0] = 'X'

	got, ok := r.Get(l.Token)
	if !ok {
		t.Fatal("lease not found")
	}
	if string(got.Content) != "pdf" {
		t.Errorf("content = %q, want snapshot taken at acquisition", got.Content)
	}
	if got.Disposition != Inline || got.Name != "CV" {
		t.Errorf("lease = %+v", got)
	}

	r.Release(l.Token)
	if _, ok := r.Get(l.Token); ok {
		t.Error("lease still active after Release")
	}
	r.Release(l.Token)
}

func TestExpiry(t *testing.T) {
	r := New()
	defer r.Close()

	l := r.Acquire(testAttachment(), Attachment, 20*time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := r.Get(l.Token); !ok {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("lease was not revoked after its TTL")
}

func TestDefaults(t *testing.T) {
	r := New()
	defer r.Close()

	l := r.Acquire(testAttachment(), "bogus", 0)
	if l.Disposition != Attachment {
		t.Errorf("disposition = %q, want attachment", l.Disposition)
	}
	if d := time.Until(l.ExpiresAt); d > DownloadTTL {
		t.Errorf("ttl %v exceeds download default", d)
	}

	l = r.Acquire(testAttachment(), Inline, 0)
	if d := time.Until(l.ExpiresAt); d <= DownloadTTL {
		t.Errorf("inline ttl %v should use the open default", d)
	}
}

func TestClose(t *testing.T) {
	r := New()
	r.Acquire(testAttachment(), Inline, time.Minute)
	r.Acquire(testAttachment(), Inline, time.Minute)
	r.Close()
	if r.Len() != 0 {
		t.Errorf("Len = %d after Close", r.Len())
	}
	l := r.Acquire(testAttachment(), Inline, time.Minute)
	if _, ok := r.Get(l.Token); ok {
		t.Error("lease granted after Close")
	}
}
