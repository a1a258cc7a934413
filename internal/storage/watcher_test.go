package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/jobtrail/internal/models"
	"github.com/starford/jobtrail/internal/normalize"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

type keyRecorder struct {
	mu   sync.Mutex
	keys []string
}

func (r *keyRecorder) add(key string) {
	r.mu.Lock()
	r.keys = append(r.keys, key)
	r.mu.Unlock()
}

func (r *keyRecorder) has(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range r.keys {
		if k == key {
			return true
		}
	}
	return false
}

func watcherTestEnv(t *testing.T) (string, *Scalar, *keyRecorder) {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	s := NewScalar(fs, normalize.New(), nil)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	rec := &keyRecorder{}
	go func() { _ = Watch(ctx, s, logger, rec.add) }()
	time.Sleep(100 * time.Millisecond)
	return dir, s, rec
}

func TestWatcher_ExternalEditReported(t *testing.T) {
	dir, _, rec := watcherTestEnv(t)

	_ = os.WriteFile(filepath.Join(dir, FileName(KeyProfile)), []byte(`{"name":"Ann","email":""}`), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has(KeyProfile)
	}, "expected profile change callback")
}

func TestWatcher_OwnSaveIgnored(t *testing.T) {
	_, s, rec := watcherTestEnv(t)

	if err := s.SaveJobs([]models.JobRecord{}); err != nil {
		t.Fatal(err)
	}
	time.Sleep(3 * watchDebounce)
	if rec.has(KeyJobs) {
		t.Error("store's own save should not be reported")
	}
}

func TestWatcher_UnrelatedFileIgnored(t *testing.T) {
	dir, _, rec := watcherTestEnv(t)

	_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o644)
	time.Sleep(3 * watchDebounce)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.keys) != 0 {
		t.Errorf("unexpected callbacks: %v", rec.keys)
	}
}
