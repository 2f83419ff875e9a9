package content

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestFormatSummary_NullsAndEmptyLists(t *testing.T) {
	s := FormatSummary(&Entry{ID: 1, Title: "Bare", Slug: "bare"}, false)

	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := string(raw)

	for _, want := range []string{
		`"coverUrl":null`,
		`"duration":null`,
		`"points":null`,
		`"category":null`,
		`"subCategories":[]`,
		`"tags":[]`,
		`"likedByMe":false`,
		`"likeCount":0`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary JSON missing %s: %s", want, got)
		}
	}
}

func TestFormatSummary_Relations(t *testing.T) {
	e := &Entry{
		ID:            5,
		Title:         "Sun salutation",
		Cover:         &Media{ID: 1, URL: "/uploads/sun.jpg"},
		Duration:      &Duration{Label: "10 min"},
		Points:        int64Ptr(20),
		Category:      &Category{ID: 2, Name: "Wellbeing"},
		Subcategories: []Subcategory{{ID: 11, Name: "Breathing"}},
		Tags:          []Tag{{ID: 3, Name: "Yoga Basics"}, {ID: 4, Name: "Focus"}},
	}

	s := FormatSummary(e, true)
	if s.CoverURL == nil || *s.CoverURL != "/uploads/sun.jpg" {
		t.Errorf("CoverURL = %v", s.CoverURL)
	}
	if s.Duration == nil || s.Duration.Label != "10 min" {
		t.Errorf("Duration = %+v", s.Duration)
	}
	if s.Category == nil || *s.Category != "Wellbeing" {
		t.Errorf("Category = %v", s.Category)
	}
	if len(s.Tags) != 2 || s.Tags[0] != "Yoga Basics" {
		t.Errorf("Tags = %v", s.Tags)
	}
	if len(s.SubCategories) != 1 || s.SubCategories[0] != "Breathing" {
		t.Errorf("SubCategories = %v", s.SubCategories)
	}
	if !s.LikedByMe {
		t.Error("LikedByMe = false, want true")
	}
}

func TestFormatDetail(t *testing.T) {
	e := &Entry{
		ID:           9,
		Title:        "Evening flow",
		RichText:     strPtr("## Steps"),
		Body:         json.RawMessage(`[{"type":"paragraph"}]`),
		Category:     &Category{ID: 2, Name: "Wellbeing"},
		Tags:         []Tag{{ID: 3, Name: "Yoga Basics", Accent: strPtr("#ff8800")}},
		Author:       &Author{ID: 4, Name: "Ana"},
		Organization: &Organization{ID: 7, Name: "Acme"},
	}

	raw, err := json.Marshal(FormatDetail(e, false))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := string(raw)

	for _, want := range []string{
		`"richText":"## Steps"`,
		`"body":[{"type":"paragraph"}]`,
		`"category":{"id":2,"name":"Wellbeing"}`,
		`"tags":[{"id":3,"name":"Yoga Basics","accent":"#ff8800"}]`,
		`"author":{"id":4,"name":"Ana","avatarUrl":null}`,
		`"organization":{"id":7,"name":"Acme"}`,
		`"subCategories":[]`,
		`"likedByMe":false`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("detail JSON missing %s: %s", want, got)
		}
	}
}

func TestFormatDetail_NullBody(t *testing.T) {
	raw, err := json.Marshal(FormatDetail(&Entry{ID: 1}, false))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"body":null`) {
		t.Errorf("expected null body: %s", raw)
	}
}

func TestFormatSummaries_NeverNil(t *testing.T) {
	if got := FormatSummaries(nil, nil); got == nil {
		t.Error("FormatSummaries(nil) returned nil")
	}
}
