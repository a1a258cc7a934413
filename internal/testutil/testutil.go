// Package testutil provides shared test helpers for setting up data
// directories, attachment databases and controllers.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/jobtrail/internal/blobstore"
	"github.com/starford/jobtrail/internal/normalize"
	"github.com/starford/jobtrail/internal/storage"
	"github.com/starford/jobtrail/internal/tracker"
)

// TestBlobStore creates a temporary SQLite attachment store that is
// automatically cleaned up.
func TestBlobStore(t *testing.T) *blobstore.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "jobtrail-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := blobstore.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestDataDir creates a temporary data directory with a scalar store.
func TestDataDir(t *testing.T) (string, *storage.Scalar) {
	t.Helper()
	dir := t.TempDir()
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, storage.NewScalar(fs, normalize.New(), nil)
}

// TestController creates a controller over a temporary data directory.
// With withBlobs false the controller runs without attachment storage.
func TestController(t *testing.T, withBlobs bool) *tracker.Controller {
	t.Helper()
	_, store := TestDataDir(t)
	var opts []tracker.Option
	if withBlobs {
		opts = append(opts, tracker.WithBlobStore(TestBlobStore(t)))
	}
	ctrl := tracker.New(store, opts...)
	t.Cleanup(ctrl.Close)
	return ctrl
}
