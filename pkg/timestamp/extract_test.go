package timestamp

import (
	"testing"
	"time"

	"relaylog/pkg/models"
)

var fixedNow = time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)

func fixedExtractor() Extractor {
	return Extractor{Now: func() time.Time { return fixedNow }}
}

func TestExtractStructuredPassthrough(t *testing.T) {
	e := fixedExtractor()
	want := time.Date(2026, 2, 9, 1, 10, 0, 500, time.UTC)
	got := e.Extract(models.StructuredTime(want), "msg-x")
	if !got.Equal(want) {
		t.Fatalf("structured: got %v want %v", got, want)
	}
}

func TestExtractHyphenatedString(t *testing.T) {
	e := fixedExtractor()
	got := e.Extract(models.EncodedString("2026-02-09T01-10-00Z"), "msg-x")
	want := time.Date(2026, 2, 9, 1, 10, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("hyphenated string: got %v want %v", got, want)
	}
}

func TestExtractWellFormedString(t *testing.T) {
	e := fixedExtractor()
	got := e.Extract(models.EncodedString("2026-02-09T01:10:00Z"), "msg-x")
	want := time.Date(2026, 2, 9, 1, 10, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestExtractFutureStringClamped(t *testing.T) {
	e := fixedExtractor()
	future := fixedNow.Add(time.Hour).Format(time.RFC3339)
	got := e.Extract(models.EncodedString(future), "msg-x")
	if !got.Equal(fixedNow) {
		t.Fatalf("future string not clamped: got %v want %v", got, fixedNow)
	}
}

func TestExtractNearFutureStringKept(t *testing.T) {
	e := fixedExtractor()
	soon := fixedNow.Add(2 * time.Minute)
	got := e.Extract(models.EncodedString(soon.Format(time.RFC3339)), "msg-x")
	if !got.Equal(soon) {
		t.Fatalf("within-skew string was clamped: got %v want %v", got, soon)
	}
}

func TestExtractFutureStructuredNotClamped(t *testing.T) {
	e := fixedExtractor()
	future := fixedNow.Add(time.Hour)
	got := e.Extract(models.StructuredTime(future), "msg-x")
	if !got.Equal(future) {
		t.Fatalf("structured source must not be clamped: got %v want %v", got, future)
	}
}

func TestExtractMillis(t *testing.T) {
	e := fixedExtractor()
	want := time.Date(2026, 2, 9, 1, 10, 0, 0, time.UTC)
	got := e.Extract(models.EpochMillis(want.UnixMilli()), "msg-x")
	if !got.Equal(want) {
		t.Fatalf("millis: got %v want %v", got, want)
	}
}

func TestExtractAbsentFallsBackToID(t *testing.T) {
	e := fixedExtractor()
	got := e.Extract(models.RawTimestamp{}, "msg-2026-02-09T01-10-00Z-a3f1b2c4")
	want := time.Date(2026, 2, 9, 1, 10, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("id fallback: got %v want %v", got, want)
	}
}

func TestExtractGarbageStringFallsBackToID(t *testing.T) {
	e := fixedExtractor()
	got := e.Extract(models.EncodedString("not a time"), "msg-2026-02-09T01-10-00Z-a3f1")
	want := time.Date(2026, 2, 9, 1, 10, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("garbage string: got %v want %v", got, want)
	}
}

func TestExtractUnknown(t *testing.T) {
	e := fixedExtractor()
	got := e.Extract(models.RawTimestamp{}, "legacy-opaque-id")
	if !got.IsZero() {
		t.Fatalf("expected zero time for unresolvable message, got %v", got)
	}
}

func TestRepairLeavesDateHyphens(t *testing.T) {
	got := Repair("2026-02-09T01-10-00Z")
	want := "2026-02-09T01:10:00Z"
	if got != want {
		t.Fatalf("repair: got %q want %q", got, want)
	}
	if r := Repair("2026-02-09T01:10:00Z"); r != want {
		t.Fatalf("repair must be idempotent, got %q", r)
	}
}
