package qv

import (
	"reflect"
	"testing"
)

func TestFromFastq(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  QualityValues
	}{
		{"empty", "", nil},
		{"lowest", "!", QualityValues{0}},
		{"mixed", "!+5?I~", QualityValues{0, 10, 20, 30, 40, 93}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FromFastq(tc.input); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("FromFastq(%q): got %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestFastq(t *testing.T) {
	testCases := []struct {
		name  string
		input QualityValues
		want  string
	}{
		{"empty", nil, ""},
		{"mixed", QualityValues{0, 10, 20, 30, 40}, "!+5?I"},
		{"clamped", QualityValues{93, 94, Missing}, "~~~"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.input.Fastq(); got != tc.want {
				t.Errorf("Fastq(): got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIsMissing(t *testing.T) {
	if !(QualityValues{}).IsMissing() {
		t.Errorf("empty values should be missing")
	}
	if !(QualityValues{Missing, Missing}).IsMissing() {
		t.Errorf("all-0xff values should be missing")
	}
	if (QualityValues{Missing, 20}).IsMissing() {
		t.Errorf("values with a real quality should not be missing")
	}
}
