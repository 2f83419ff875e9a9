package content

import (
	"errors"
	"slices"
	"testing"

	"github.com/GyroZepelix/library-cms/internal/validation"
)

func TestParseIDSet(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   []int64
	}{
		{"absent", nil, nil},
		{"empty string", []string{""}, nil},
		{"empty brackets", []string{"[]"}, nil},
		{"single number", []string{"7"}, []int64{7}},
		{"comma list", []string{"1,2,3"}, []int64{1, 2, 3}},
		{"bracketed with spaces", []string{"[1, 2 ,3]"}, []int64{1, 2, 3}},
		{"empty tokens skipped", []string{"1,,2,"}, []int64{1, 2}},
		{"duplicates removed", []string{"3,1,3,1"}, []int64{3, 1}},
		{"repeated keys merged", []string{"1", "2,3", "[1]"}, []int64{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIDSet("tags", tt.values)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("ParseIDSet(%q) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestParseIDSet_Rejects(t *testing.T) {
	for _, raw := range []string{"abc", "1.5", "1,x", "0", "-4", "[1,2]]x"} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseIDSet("subcategories", []string{raw})
			var valErr *validation.Error
			if !errors.As(err, &valErr) {
				t.Fatalf("expected *validation.Error, got %v", err)
			}
			if valErr.Fields[0].Field != "subcategories" {
				t.Errorf("field = %q, want subcategories", valErr.Fields[0].Field)
			}
		})
	}
}

func TestParseIDSet_EquivalentForms(t *testing.T) {
	forms := [][]string{
		{"[1,2,3]"},
		{"1,2,3"},
		{"1", "2", "3"},
		{" [ 3 , 2 , 1 ] "},
	}

	for _, form := range forms {
		got, err := ParseIDSet("tags", form)
		if err != nil {
			t.Fatalf("ParseIDSet(%q): %v", form, err)
		}
		sorted := slices.Clone(got)
		slices.Sort(sorted)
		if !slices.Equal(sorted, []int64{1, 2, 3}) {
			t.Errorf("ParseIDSet(%q) = %v, want the set {1,2,3}", form, got)
		}
	}
}

func TestParseID(t *testing.T) {
	got, err := ParseID("category", "")
	if err != nil || got != nil {
		t.Errorf("ParseID(\"\") = %v, %v; want nil, nil", got, err)
	}

	got, err = ParseID("category", " 12 ")
	if err != nil || got == nil || *got != 12 {
		t.Errorf("ParseID(\" 12 \") = %v, %v; want 12", got, err)
	}

	if _, err := ParseID("category", "twelve"); err == nil {
		t.Error("expected error for non-numeric id")
	}
}
