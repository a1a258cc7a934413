package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/jobtrail/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "jobtrail-blob-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPutAndGet(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	att := &models.Attachment{
		AttachmentMeta: models.AttachmentMeta{Filename: "resume.pdf"},
		Content:        []byte("%PDF-1.4 fake"),
	}
	id, err := db.Put(ctx, att)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated id")
	}

	got, err := db.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("attachment not found")
	}
	if got.Name != "resume.pdf" {
		t.Errorf("name = %q, want filename default", got.Name)
	}
	if got.MIME != "application/pdf" {
		t.Errorf("mime = %q", got.MIME)
	}
	if got.Size != int64(len("%PDF-1.4 fake")) {
		t.Errorf("size = %d", got.Size)
	}
	if got.UploadedAt == 0 {
		t.Error("uploadedAt not set")
	}
	if string(got.Content) != "%PDF-1.4 fake" {
		t.Errorf("content = %q", got.Content)
	}
}

func TestGetMissingReturnsNil(t *testing.T) {
	db := testDB(t)
	got, err := db.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestListOrderAndDelete(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	for i, name := range []string{"old", "mid", "new"} {
		_, err := db.Put(ctx, &models.Attachment{
			AttachmentMeta: models.AttachmentMeta{ID: name, Name: name, Filename: name + ".txt", UploadedAt: base + int64(i)},
			Content:        []byte(name),
		})
		if err != nil {
			t.Fatalf("Put %s: %v", name, err)
		}
	}

	metas, err := db.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(metas) != 3 || metas[0].ID != "new" || metas[2].ID != "old" {
		t.Errorf("order = %+v", metas)
	}

	if err := db.Delete(ctx, "mid"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	all, err := db.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("len = %d, want 2", len(all))
	}
	if err := db.Delete(ctx, "mid"); err != nil {
		t.Errorf("second delete should succeed: %v", err)
	}
}

func TestOpenFailsOnDirectory(t *testing.T) {
	dir := t.TempDir()
	if _, err := Open(filepath.Join(dir, "missing", "nested", "x.db")); err == nil {
		t.Error("expected error for unreachable database path")
	}
	if _, err := Open(""); err == nil {
		t.Error("expected error for empty dsn")
	}
}

func TestSameIDOperationsSerialized(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, _ = db.Put(ctx, &models.Attachment{
					AttachmentMeta: models.AttachmentMeta{ID: "shared", Filename: "a.txt"},
					Content:        []byte("x"),
				})
			} else {
				_ = db.Delete(ctx, "shared")
			}
		}(i)
	}
	wg.Wait()

	if n := len(db.locks.locks); n != 0 {
		t.Errorf("lock table not released: %d entries", n)
	}
}
