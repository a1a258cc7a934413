package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Port  int    `yaml:"port"`
	fail  bool
	calls int
}

func (s *sample) Validate() error {
	s.calls++
	if s.fail {
		return errors.New("boom")
	}
	return nil
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "jobs")
	s := &sample{Port: 1}
	if err := Load(writeFile(t, "name: ${SAMPLE_NAME}\n"), s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "jobs" || s.Port != 1 || s.calls != 1 {
		t.Errorf("sample = %+v", s)
	}
}

func TestLoad_UnknownKey(t *testing.T) {
	err := Load(writeFile(t, "nmae: typo\n"), &sample{})
	if err == nil || !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("err = %v, want parse error", err)
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	s := &sample{Port: 7}
	if err := Load(writeFile(t, ""), s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Port != 7 {
		t.Errorf("port = %d, want preset 7", s.Port)
	}
}

func TestLoad_ValidationError(t *testing.T) {
	err := Load(writeFile(t, "name: x\n"), &sample{fail: true})
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestLoadWithDefaults_MissingFile(t *testing.T) {
	s := &sample{}
	if err := LoadWithDefaults(filepath.Join(t.TempDir(), "nope.yaml"), "", s); err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if s.calls != 1 {
		t.Error("defaults should still be validated")
	}

	fallback := writeFile(t, "port: 9\n")
	if err := LoadWithDefaults(filepath.Join(t.TempDir(), "nope.yaml"), fallback, s); err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if s.Port != 9 {
		t.Errorf("port = %d, want 9 from fallback", s.Port)
	}
}
