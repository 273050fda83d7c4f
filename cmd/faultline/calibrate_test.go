package main

import (
	"testing"

	"github.com/faultline-dev/faultline/internal/calibration"
)

func TestParseVerdict_KnownStrings(t *testing.T) {
	cases := map[string]calibration.Verdict{
		"Confirmed":    calibration.Confirmed,
		"Refuted":      calibration.Refuted,
		"Inconclusive": calibration.Inconclusive,
		"Confounded":   calibration.Confounded,
		"garbage":      calibration.Pending,
		"":             calibration.Pending,
	}
	for in, want := range cases {
		if got := parseVerdict(in); got != want {
			t.Errorf("parseVerdict(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseFeatureVector_Empty(t *testing.T) {
	out, err := parseFeatureVector("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != nil {
		t.Fatalf("expected nil slice for empty input, got %v", out)
	}
}

func TestParseFeatureVector_ParsesCommaSeparatedFloats(t *testing.T) {
	out, err := parseFeatureVector("1.5, 2, -3.25")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{1.5, 2, -3.25}
	if len(out) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(out))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("entry %d: got %v, want %v", i, out[i], want[i])
		}
	}
}

func TestParseFeatureVector_RejectsInvalidEntry(t *testing.T) {
	if _, err := parseFeatureVector("1.0,not-a-number"); err == nil {
		t.Fatal("expected an error for an unparseable entry")
	}
}
