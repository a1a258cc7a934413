package parser

import (
	"testing"
	"time"
)

func TestParse_FrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntitle: Platform Engineer\ncompany: Acme\nstatus: applied\n---\n# Ignored heading\nGreat team.\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Title != "Platform Engineer" {
		t.Errorf("title = %q, want %q", r.Title, "Platform Engineer")
	}
	if r.Body != "# Ignored heading\nGreat team.\n" {
		t.Errorf("body = %q", r.Body)
	}

	raw := r.Record()
	if raw["company"] != "Acme" || raw["status"] != "applied" {
		t.Errorf("frontmatter not carried: %v", raw)
	}
	if raw["notes"] != "Great team." {
		t.Errorf("notes = %q", raw["notes"])
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	input := []byte("# Backend Developer\nApply at https://jobs.example.com/123. Contact hr@example.com\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter, got %v", r.Frontmatter)
	}
	raw := r.Record()
	if raw["title"] != "Backend Developer" {
		t.Errorf("title = %v", raw["title"])
	}
	if raw["url"] != "https://jobs.example.com/123" {
		t.Errorf("url = %v", raw["url"])
	}
	if raw["posterEmail"] != "hr@example.com" {
		t.Errorf("email = %v", raw["posterEmail"])
	}
}

func TestParse_FrontmatterWins(t *testing.T) {
	input := []byte("---\nurl: https://a.example\nnotes: keep me\nposterEmail: boss@a.example\n---\nsee https://b.example or x@b.example\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatal(err)
	}
	raw := r.Record()
	if raw["url"] != "https://a.example" || raw["notes"] != "keep me" || raw["posterEmail"] != "boss@a.example" {
		t.Errorf("record = %v", raw)
	}
}

func TestParse_YAMLDate(t *testing.T) {
	r, err := Parse([]byte("---\nappliedDate: 2024-06-01\n---\n"))
	if err != nil {
		t.Fatal(err)
	}
	switch v := r.Record()["appliedDate"].(type) {
	case string:
		if v != "2024-06-01" {
			t.Errorf("appliedDate = %q", v)
		}
	case time.Time:
		if v.Format("2006-01-02") != "2024-06-01" {
			t.Errorf("appliedDate = %v", v)
		}
	default:
		t.Errorf("appliedDate has type %T", v)
	}
}

func TestParse_InvalidYAMLFallback(t *testing.T) {
	input := []byte("---\n: invalid: yaml: {{{\n---\nBody\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter on invalid YAML")
	}
	if _, ok := r.Record()["notes"]; !ok {
		t.Error("whole clipping should become notes")
	}
}

func TestStripTitle(t *testing.T) {
	if got := stripTitle("# Title only"); got != "" {
		t.Errorf("stripTitle = %q", got)
	}
	if got := stripTitle("no heading\n# later"); got != "no heading\n# later" {
		t.Errorf("stripTitle = %q", got)
	}
}
