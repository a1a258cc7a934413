package storage

import (
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"testing"
)

func tempData(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempData(t)
	content := []byte(`[{"id":"1"}]`)
	if err := s.Write("jobs.json", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("jobs.json")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestProviderMethods(t *testing.T) {
	typ := reflect.TypeOf((*Provider)(nil)).Elem()
	var got []string
	for i := 0; i < typ.NumMethod(); i++ {
		got = append(got, typ.Method(i).Name)
	}
	want := []string{"Read", "Root", "Write"}
	if !slices.Equal(got, want) {
		t.Errorf("Provider methods = %v, want %v", got, want)
	}
	var _ Provider = (*FS)(nil)
}

func TestTraversalBlocked(t *testing.T) {
	s := tempData(t)
	for _, p := range []string{"../../etc/passwd", "../outside.json", "/etc/shadow", ""} {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	s := tempData(t)
	_ = s.Write("a.json", []byte("1"))
	if err := s.Write("a.json", []byte("2")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("a.json")
	if string(got) != "2" {
		t.Errorf("expected updated content, got %q", got)
	}
	matches, _ := filepath.Glob(filepath.Join(s.root, tempPrefix+"*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "jobtrail-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	if _, err := NewFS(f.Name()); err == nil {
		t.Error("expected error when root is a file")
	}
}
