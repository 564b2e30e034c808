package rsvp_test

import (
	"reflect"
	"testing"

	"banquet/src-server/rsvp"
)

func TestNormalizeTags(t *testing.T) {
	got := rsvp.NormalizeTags([]string{" Gluten", "NUTS", "gluten", "", "  ", "shellfish "})
	want := []string{"gluten", "nuts", "shellfish"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if rsvp.NormalizeTags(nil) != nil {
		t.Error("nil input should stay nil")
	}
	if rsvp.NormalizeTags([]string{" ", ""}) != nil {
		t.Error("blank-only input should collapse to nil")
	}
}

func TestParseAndJoinTagsRoundTrip(t *testing.T) {
	got := rsvp.ParseTags(" Gluten, nuts ,gluten,, custom-sauce ")
	want := []string{"gluten", "nuts", "custom-sauce"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	// unknown codes survive the storage round-trip untouched
	if joined := rsvp.JoinTags(got); joined != "gluten,nuts,custom-sauce" {
		t.Error("join should preserve insertion order, got", joined)
	}
	if rsvp.ParseTags("   ") != nil {
		t.Error("blank storage value should parse to nil")
	}
}

func TestKnownTagsFiltersOnlyForDisplay(t *testing.T) {
	vocab := []string{"gluten", "dairy", "nuts"}
	got := rsvp.KnownTags([]string{"gluten", "custom-sauce", "NUTS"}, vocab)
	want := []string{"gluten", "nuts"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if rsvp.KnownTags([]string{"custom"}, vocab) != nil {
		t.Error("no known codes should yield nil")
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"+34 600-123":    "34600123",
		"(34) 600.123":   "34600123",
		"  ":             "",
		"":               "",
		"tel: 600 ĀB 12": "60012",
	}
	for in, want := range cases {
		if got := rsvp.NormalizePhone(in); got != want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", in, got, want)
		}
	}
}
