package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "jobs.changed", Data: map[string]string{"command": "create_job"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: jobs.changed") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"command":"create_job"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishChange_ActionsThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// First change should trigger actions.updated.
	b.PublishChange(Change{Command: "create_job", Jobs: true})
	// Second change immediately should NOT trigger another one.
	b.PublishChange(Change{Command: "toggle_checklist", Checklist: true})
	// Attachment-only changes never refresh actions.
	b.PublishChange(Change{Command: "upload_attachment", Attachments: true})

	time.Sleep(50 * time.Millisecond)
	counts := map[string]int{}
loop:
	for {
		select {
		case msg := <-ch:
			s := string(msg)
			for _, typ := range []string{"actions.updated", "jobs.changed", "checklist.changed", "attachments.changed"} {
				if strings.Contains(s, "event: "+typ+"\n") {
					counts[typ]++
				}
			}
		default:
			break loop
		}
	}

	if counts["jobs.changed"] != 1 || counts["checklist.changed"] != 1 || counts["attachments.changed"] != 1 {
		t.Errorf("change events = %v", counts)
	}
	if counts["actions.updated"] != 1 {
		t.Errorf("actions events = %d, want 1 (throttled)", counts["actions.updated"])
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	// Start handler in background.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.Publish(Event{Type: "jobs.changed", Data: map[string]string{"command": "x"}})
	time.Sleep(50 * time.Millisecond)

	// Cancel context to disconnect.
	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: jobs.changed") {
		t.Errorf("handler output missing event: %q", body)
	}

	// Client should be cleaned up.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Fill buffer (capacity 64) and then one more should not block.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
	// If we reach here without deadlock, the test passes.
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// Should be safe no-op after close.
	b.Publish(Event{Type: "jobs.changed", Data: map[string]string{"command": "x"}})
	b.PublishChange(Change{Command: "x", Jobs: true})
}
