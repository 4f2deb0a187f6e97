package cmd

import (
	"testing"

	"github.com/packerlschupfer/ESP32-Logger/internal/model"
)

func TestParseKindFilter(t *testing.T) {
	set, err := parseKindFilter("interleaved, Out-Of-Sequence")
	if err != nil {
		t.Fatal(err)
	}
	if !set[model.Interleaved] || !set[model.OutOfSequence] {
		t.Errorf("expected interleaved and out-of-sequence, got %v", set)
	}
	if set[model.MalformedLine] {
		t.Error("malformed was not requested")
	}
}

func TestParseKindFilterEmptyMeansAll(t *testing.T) {
	set, err := parseKindFilter("")
	if err != nil {
		t.Fatal(err)
	}
	if set != nil {
		t.Errorf("empty filter must return nil (all kinds), got %v", set)
	}
}

func TestParseKindFilterUnknown(t *testing.T) {
	if _, err := parseKindFilter("bogus"); err == nil {
		t.Error("expected error for unknown kind")
	}
}
