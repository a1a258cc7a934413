package storage

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/starford/jobtrail/internal/models"
	"github.com/starford/jobtrail/internal/normalize"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testScalar(t *testing.T) (*Scalar, *FS) {
	t.Helper()
	fs := tempData(t)
	return NewScalar(fs, normalize.New(), quietLogger()), fs
}

func TestScalar_DefaultsWhenMissing(t *testing.T) {
	s, _ := testScalar(t)
	if jobs := s.LoadJobs(); jobs == nil || len(jobs) != 0 {
		t.Errorf("jobs = %v, want empty non-nil", jobs)
	}
	cl := s.LoadChecklist()
	if cl.LastUpdated != nil || cl.Checks == nil {
		t.Errorf("checklist = %+v", cl)
	}
	if p := s.LoadProfile(); p != (models.Profile{}) {
		t.Errorf("profile = %+v", p)
	}
}

func TestScalar_DefaultsWhenCorrupt(t *testing.T) {
	s, fs := testScalar(t)
	_ = fs.Write(FileName(KeyJobs), []byte("{not json"))
	_ = fs.Write(FileName(KeyChecklist), []byte(`"a string"`))
	_ = fs.Write(FileName(KeyProfile), []byte(`[1,2]`))

	if jobs := s.LoadJobs(); len(jobs) != 0 {
		t.Errorf("jobs = %v", jobs)
	}
	if cl := s.LoadChecklist(); cl.LastUpdated != nil {
		t.Errorf("checklist = %+v", cl)
	}
	if p := s.LoadProfile(); p.Name != "" {
		t.Errorf("profile = %+v", p)
	}
}

func TestScalar_RoundTrip(t *testing.T) {
	s, _ := testScalar(t)
	jobs := []models.JobRecord{{
		ID: "j1", Title: "Dev", Status: models.StatusApplied,
		PosterMobileRaw: "0400 111 222", PosterMobile: "0400111222",
		CreatedAt: 1700000000000,
	}}
	if err := s.SaveJobs(jobs); err != nil {
		t.Fatalf("SaveJobs: %v", err)
	}
	got := s.LoadJobs()
	if len(got) != 1 || got[0] != jobs[0] {
		t.Errorf("LoadJobs = %+v", got)
	}

	day := "2024-04-01"
	if err := s.SaveChecklist(models.ChecklistState{Checks: map[string]bool{"cv": true}, LastUpdated: &day}); err != nil {
		t.Fatalf("SaveChecklist: %v", err)
	}
	cl := s.LoadChecklist()
	if !cl.Checks["cv"] || cl.LastUpdated == nil || *cl.LastUpdated != day {
		t.Errorf("checklist = %+v", cl)
	}

	if err := s.SaveProfile(models.Profile{Name: "Sam", Email: "sam@x.io"}); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	if p := s.LoadProfile(); p.Name != "Sam" {
		t.Errorf("profile = %+v", p)
	}
}

func TestScalar_Stale(t *testing.T) {
	s, fs := testScalar(t)
	_ = s.SaveProfile(models.Profile{Name: "A"})
	if s.Stale(KeyProfile) {
		t.Error("own save must not be stale")
	}
	_ = fs.Write(FileName(KeyProfile), []byte(`{"name":"B"}`))
	if !s.Stale(KeyProfile) {
		t.Error("external write should be stale")
	}
}

func TestWatch_ReportsExternalEdits(t *testing.T) {
	s, fs := testScalar(t)
	_ = s.SaveJobs(nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var keys []string
	go Watch(ctx, s, quietLogger(), func(key string) {
		mu.Lock()
		keys = append(keys, key)
		mu.Unlock()
	})
	time.Sleep(100 * time.Millisecond)

	// Own save: filtered.
	_ = s.SaveJobs([]models.JobRecord{{ID: "own"}})
	time.Sleep(400 * time.Millisecond)
	mu.Lock()
	if len(keys) != 0 {
		t.Errorf("own save reported: %v", keys)
	}
	mu.Unlock()

	_ = fs.Write(FileName(KeyJobs), []byte(`[{"id":"external"}]`))

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(keys)
		mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(keys) == 0 || keys[0] != KeyJobs {
		t.Errorf("keys = %v, want [%s]", keys, KeyJobs)
	}
}
