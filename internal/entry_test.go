package internal

import (
	"bytes"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/jobtrail/internal/tracker"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.Data.Path = filepath.Join(dir, "data")
	cfg.SQLite.Path = filepath.Join(dir, "jobtrail.db")
	return cfg
}

func TestBuild_WithAttachments(t *testing.T) {
	cfg := testConfig(t)
	rt, err := build(cfg, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer rt.Close()

	if !rt.ctrl.AttachmentsAvailable() {
		t.Error("attachments should be available")
	}
	if rt.registry == nil {
		t.Error("metrics registry should be created when enabled")
	}
}

func TestBuild_DegradesWhenStoreFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "missing", "dir", "jobtrail.db")
	cfg.Metrics.Enabled = false

	var logs bytes.Buffer
	rt, err := build(cfg, slog.New(slog.NewJSONHandler(&logs, nil)))
	if err != nil {
		t.Fatalf("build should not fail when the attachment store does: %v", err)
	}
	defer rt.Close()

	if rt.ctrl.AttachmentsAvailable() {
		t.Error("attachments should be unavailable")
	}
	if !strings.Contains(logs.String(), "attachment storage unavailable") {
		t.Errorf("expected a warning, logs = %s", logs.String())
	}
	if _, err := rt.ctrl.Create(t.Context(), tracker.JobFields{Title: "x", Company: "y"}); err != nil {
		t.Errorf("job tracking should keep working: %v", err)
	}
}

func TestBuild_AttachmentsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.SQLite.Path = ""
	rt, err := build(cfg, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer rt.Close()
	if rt.ctrl.AttachmentsAvailable() {
		t.Error("empty sqlite path should disable attachments")
	}
}

func TestSSEChange(t *testing.T) {
	ch := sseChange(tracker.Change{
		Command:  "create_job",
		Sections: tracker.SectionJobs | tracker.SectionQuery,
	})
	if ch.Command != "create_job" || !ch.Jobs || ch.Checklist || ch.Profile || ch.Attachments {
		t.Errorf("change = %+v", ch)
	}

	ch = sseChange(tracker.Change{Command: "import", Sections: tracker.SectionChecklist | tracker.SectionProfile})
	if ch.Jobs || !ch.Checklist || !ch.Profile {
		t.Errorf("change = %+v", ch)
	}
}

func TestLogWriter(t *testing.T) {
	var buf bytes.Buffer
	app := &application{}
	WithLogOutput(&buf)(app)
	if app.logWriter(io.Discard) != &buf {
		t.Error("explicit log output should win over the default")
	}
	if (&application{}).logWriter(io.Discard) != io.Discard {
		t.Error("default log output expected")
	}
}
