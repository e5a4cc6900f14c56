package workflow

import (
	"testing"

	"bitbucket.org/mmdatafocus/crossval_backend/models"
)

func TestBuildCommentMap_SkipsBlanks(t *testing.T) {
	irrView := []*models.Deal{
		{Name: "Alpha", Comment: "model input stale"},
		{Name: "Beta", Comment: ""},
	}
	durationView := []*models.Deal{
		{Name: "Gamma", Comment: "duration override pending"},
		{Name: "Alpha", Comment: "confirmed with desk"},
	}

	m := buildCommentMap(irrView, durationView)
	if len(m) != 2 {
		t.Fatalf("expected 2 comments, got %d: %v", len(m), m)
	}
	if _, ok := m["Beta"]; ok {
		t.Fatalf("blank comments must not enter the map")
	}
	if m["Alpha"] != "confirmed with desk" {
		t.Fatalf("later sheet must win for duplicate names, got %q", m["Alpha"])
	}
}

func TestApplyComments_NeverErases(t *testing.T) {
	rows := []*models.Deal{
		{Name: "Alpha", Comment: "current note"},
		{Name: "Beta", Comment: "keep me"},
	}
	inherited := map[string]string{"Alpha": "inherited note"}

	updated := applyComments(rows, inherited, false)
	if updated != 1 {
		t.Fatalf("expected 1 update, got %d", updated)
	}
	if rows[0].Comment != "inherited note" {
		t.Fatalf("inherited comment must win by default, got %q", rows[0].Comment)
	}
	// Beta is absent from the map: its comment must be untouched.
	if rows[1].Comment != "keep me" {
		t.Fatalf("absent key must never erase, got %q", rows[1].Comment)
	}
}

func TestApplyComments_FillBlankOnlyPolicy(t *testing.T) {
	rows := []*models.Deal{
		{Name: "Alpha", Comment: "manual note"},
		{Name: "Beta", Comment: ""},
	}
	inherited := map[string]string{
		"Alpha": "old note",
		"Beta":  "inherited note",
	}

	updated := applyComments(rows, inherited, true)
	if updated != 1 {
		t.Fatalf("expected only the blank to fill, got %d updates", updated)
	}
	if rows[0].Comment != "manual note" {
		t.Fatalf("fill-blank-only must keep the manual note, got %q", rows[0].Comment)
	}
	if rows[1].Comment != "inherited note" {
		t.Fatalf("blank must be filled, got %q", rows[1].Comment)
	}
}

func TestApplyComments_Idempotent(t *testing.T) {
	fresh := func() []*models.Deal {
		return []*models.Deal{
			{Name: "Alpha", Comment: "current"},
			{Name: "Beta"},
			{Name: "Gamma", Comment: "untouched"},
		}
	}
	inherited := map[string]string{"Alpha": "inherited", "Beta": "filled"}

	once := fresh()
	applyComments(once, inherited, false)

	twice := fresh()
	applyComments(twice, inherited, false)
	if n := applyComments(twice, inherited, false); n != 0 {
		t.Fatalf("second application must change nothing, changed %d", n)
	}

	for i := range once {
		if once[i].Comment != twice[i].Comment {
			t.Fatalf("apply-once and apply-twice diverge at %s: %q vs %q", once[i].Name, once[i].Comment, twice[i].Comment)
		}
	}
}

func TestMergeComment_Policy(t *testing.T) {
	cases := []struct {
		name          string
		existing      string
		inherited     string
		fillBlankOnly bool
		expected      string
		changed       bool
	}{
		{"blank inherited never erases", "keep", "", false, "keep", false},
		{"fills a blank", "", "note", false, "note", true},
		{"inherited wins on conflict", "mine", "theirs", false, "theirs", true},
		{"fill-blank-only keeps existing", "mine", "theirs", true, "mine", false},
		{"identical is no change", "same", "same", false, "same", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, changed := models.MergeComment(tc.existing, tc.inherited, tc.fillBlankOnly)
			if got != tc.expected || changed != tc.changed {
				t.Fatalf("MergeComment(%q, %q, %v) = (%q, %v), expected (%q, %v)",
					tc.existing, tc.inherited, tc.fillBlankOnly, got, changed, tc.expected, tc.changed)
			}
		})
	}
}
