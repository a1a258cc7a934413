package normalize

import (
	"encoding/json"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/starford/jobtrail/internal/models"
)

var fixedNow = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

func testNormalizer() *Normalizer {
	seq := 0
	return &Normalizer{
		Now: func() time.Time { return fixedNow },
		NewID: func() string {
			seq++
			return fmt.Sprintf("gen-%d", seq)
		},
	}
}

func toRaw(t *testing.T, rec models.JobRecord) map[string]any {
	t.Helper()
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return raw
}

func TestRecord_LegacyDefaults(t *testing.T) {
	n := testNormalizer()
	rec := n.Record(map[string]any{
		"id":           "a1",
		"title":        "  Engineer ",
		"company":      "Acme",
		"status":       "Applied",
		"appliedDate":  "2024-05-01",
		"posterMobile": "+61 400 000 000",
		"notes":        42.0,
		"cvId":         "cv-9",
		"cvName":       "Resume 2024",
	})

	if rec.Title != "Engineer" {
		t.Errorf("title = %q", rec.Title)
	}
	if rec.PosterMobileRaw != "+61 400 000 000" {
		t.Errorf("raw phone not back-filled: %q", rec.PosterMobileRaw)
	}
	if rec.PosterMobile != "+61400000000" {
		t.Errorf("phone = %q", rec.PosterMobile)
	}
	if rec.Notes != "42" {
		t.Errorf("notes = %q, want coerced 42", rec.Notes)
	}
	if rec.Emailed || rec.Called {
		t.Error("flags should default to false")
	}
	if rec.CreatedAt != fixedNow.UnixMilli() {
		t.Errorf("createdAt = %d, want now", rec.CreatedAt)
	}
	if rec.AttachmentID != "cv-9" || rec.AttachmentName != "Resume 2024" {
		t.Errorf("legacy attachment ref = %q/%q", rec.AttachmentID, rec.AttachmentName)
	}
	if rec.PosterEmail != "" || rec.ContactName != "" || rec.URL != "" {
		t.Error("missing strings should default to empty")
	}
}

func TestRecord_BlankRawPhoneFallsBack(t *testing.T) {
	n := testNormalizer()
	rec := n.Record(map[string]any{
		"posterMobile":    "+61 400 000",
		"posterMobileRaw": "  ",
	})
	if rec.PosterMobileRaw != "+61 400 000" {
		t.Errorf("raw phone = %q, want the dialable value", rec.PosterMobileRaw)
	}
	if rec.PosterMobile != "+61400000" {
		t.Errorf("phone = %q, want +61400000", rec.PosterMobile)
	}

	kept := n.Record(map[string]any{
		"posterMobile":    "0400111222",
		"posterMobileRaw": "(04) 0011 1222",
	})
	if kept.PosterMobileRaw != "(04) 0011 1222" {
		t.Errorf("non-blank raw phone replaced: %q", kept.PosterMobileRaw)
	}
}

func TestRecord_FalsyNotes(t *testing.T) {
	n := testNormalizer()
	for _, v := range []any{nil, false, 0.0, json.Number("0"), ""} {
		rec := n.Record(map[string]any{"notes": v})
		if rec.Notes != "" {
			t.Errorf("notes %#v = %q, want empty", v, rec.Notes)
		}
	}
	if rec := n.Record(map[string]any{"notes": true}); rec.Notes != "true" {
		t.Errorf("truthy notes = %q", rec.Notes)
	}
}

func TestRecord_MistypedFields(t *testing.T) {
	n := testNormalizer()
	rec := n.Record(map[string]any{
		"emailed":   "yes",
		"called":    1.0,
		"status":    "interview",
		"createdAt": "1700000000000",
		"notes":     nil,
	})
	if rec.Emailed || rec.Called {
		t.Error("non-boolean flags must become false")
	}
	if rec.Status != models.StatusInterview {
		t.Errorf("status = %q", rec.Status)
	}
	if rec.CreatedAt != 1700000000000 {
		t.Errorf("createdAt = %d", rec.CreatedAt)
	}
	if rec.ID != "gen-1" {
		t.Errorf("missing id should be generated, got %q", rec.ID)
	}
	if rec.Notes != "" {
		t.Errorf("null notes = %q", rec.Notes)
	}

	unknown := n.Record(map[string]any{"status": "Ghosted"})
	if unknown.Status != models.StatusSaved {
		t.Errorf("unknown status = %q, want Saved", unknown.Status)
	}
}

func TestRecord_EmailLowercasedAndAttachmentNameCleared(t *testing.T) {
	n := testNormalizer()
	rec := n.Record(map[string]any{
		"posterEmail":    "  Jane.Doe@Example.COM ",
		"attachmentId":   "",
		"attachmentName": "orphan",
	})
	if rec.PosterEmail != "jane.doe@example.com" {
		t.Errorf("email = %q", rec.PosterEmail)
	}
	if rec.AttachmentName != "" {
		t.Errorf("attachment name without id = %q", rec.AttachmentName)
	}
}

func TestRecord_Idempotent(t *testing.T) {
	n := testNormalizer()
	first := n.Record(map[string]any{
		"title":        "Dev",
		"posterMobile": "(02) 9999 1111",
		"status":       "offer",
	})
	second := n.Record(toRaw(t, first))
	if !reflect.DeepEqual(first, second) {
		t.Errorf("not idempotent:\n first=%+v\nsecond=%+v", first, second)
	}
}

func TestRecords_DropsNonObjects(t *testing.T) {
	n := testNormalizer()
	recs := n.Records([]any{map[string]any{"id": "x"}, "junk", 3.0, nil})
	if len(recs) != 1 || recs[0].ID != "x" {
		t.Errorf("recs = %+v", recs)
	}
}

func TestDecodeRecords(t *testing.T) {
	n := testNormalizer()
	if _, err := n.DecodeRecords([]byte(`{"not":"array"}`)); err == nil {
		t.Error("expected error for non-array")
	}
	recs, err := n.DecodeRecords([]byte(`[{"id":"1","emailed":true,"posterEmail":"a@b.c"}]`))
	if err != nil {
		t.Fatalf("DecodeRecords: %v", err)
	}
	if !recs[0].Emailed {
		t.Error("boolean flag lost")
	}
}

func TestChecklistAndProfile(t *testing.T) {
	st := Checklist(map[string]any{
		"checks":      map[string]any{"linkedin": true, "seek": false, "odd": "x"},
		"lastUpdated": "2024-05-05",
	})
	if !st.Checks["linkedin"] || st.Checks["seek"] || !st.Checks["odd"] {
		t.Errorf("checks = %v", st.Checks)
	}
	if st.LastUpdated == nil || *st.LastUpdated != "2024-05-05" {
		t.Errorf("lastUpdated = %v", st.LastUpdated)
	}

	empty := Checklist("garbage")
	if empty.LastUpdated != nil || len(empty.Checks) != 0 {
		t.Errorf("garbage checklist = %+v", empty)
	}

	p := Profile(map[string]any{"name": " Sam ", "email": 5.0})
	if p.Name != "Sam" || p.Email != "5" {
		t.Errorf("profile = %+v", p)
	}
}

func TestPhone(t *testing.T) {
	cases := map[string]string{
		"+61 (0)400-111-222": "+610400111222",
		"  ":                 "",
		"ext. 12":            "12",
	}
	for in, want := range cases {
		if got := Phone(in); got != want {
			t.Errorf("Phone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRecord_IdempotenceProperty(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	properties := gopter.NewProperties(params)

	properties.Property("normalize(normalize(x)) == normalize(x)", prop.ForAll(
		func(title, mobile, email string, statusIdx int, emailed, withRaw bool, created int64) bool {
			n := testNormalizer()
			status := []string{"Saved", "applied", "Interview", "bogus", ""}[statusIdx]
			raw := map[string]any{
				"title":        " " + title + " ",
				"posterMobile": mobile,
				"posterEmail":  email,
				"status":       status,
				"emailed":      emailed,
				"createdAt":    float64(created),
			}
			if withRaw {
				raw["posterMobileRaw"] = mobile + " "
			}
			first := n.Record(raw)
			data, _ := json.Marshal(first)
			var again map[string]any
			if err := json.Unmarshal(data, &again); err != nil {
				return false
			}
			return reflect.DeepEqual(first, n.Record(again))
		},
		gen.AlphaString(),
		gen.RegexMatch(`[+0-9 ()-]{0,16}`),
		gen.RegexMatch(`[A-Za-z. @]{0,12}`),
		gen.IntRange(0, 4),
		gen.Bool(),
		gen.Bool(),
		gen.Int64Range(0, 4102444800000),
	))

	properties.TestingRun(t)
}
