// Package timestamp resolves heterogeneous writer timestamp encodings into a
// single authoritative UTC time used for ordering, merging and retention.
package timestamp

import (
	"regexp"
	"time"

	"relaylog/pkg/models"
)

// maxFutureSkew bounds how far ahead of server time a writer-encoded string
// timestamp may claim to be before it is clamped to now.
const maxFutureSkew = 5 * time.Minute

// hyphenTime matches a time-of-day whose colons were replaced with hyphens,
// as produced by writers that reuse filesystem-safe identifiers.
var hyphenTime = regexp.MustCompile(`T(\d{2})-(\d{2})-(\d{2})`)

// idTimestamp matches an identifier that begins with a date-time prefix,
// e.g. "msg-2026-02-09T01-10-00Z-a3f1". Group 1 is the encoded instant.
var idTimestamp = regexp.MustCompile(`^[a-z]+-(\d{4}-\d{2}-\d{2}T\d{2}[-:]\d{2}[-:]\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:?\d{2})?)`)

// Repair rewrites hyphen-separated time-of-day components back to colons.
// Date hyphens are untouched.
func Repair(s string) string {
	return hyphenTime.ReplaceAllString(s, "T$1:$2:$3")
}

// Extractor turns a raw stored timestamp into an authoritative time.
// Now is injectable for tests; the zero value uses the wall clock.
type Extractor struct {
	Now func() time.Time
}

func (e Extractor) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Extract resolves raw into a UTC instant. A zero return means the
// timestamp is unknown; unknown messages sort before all dated ones.
//
// Structured and numeric encodings are trusted as-is. String encodings are
// repaired and clamped against future skew, and when the field is absent the
// message id prefix is tried before giving up.
func (e Extractor) Extract(raw models.RawTimestamp, id string) time.Time {
	switch raw.Kind {
	case models.TSTime:
		return raw.Time.UTC()
	case models.TSMillis:
		return time.UnixMilli(raw.Millis).UTC()
	case models.TSString:
		if t, ok := e.parseString(raw.Str); ok {
			return t
		}
		return e.fromID(id)
	default:
		return e.fromID(id)
	}
}

func (e Extractor) fromID(id string) time.Time {
	m := idTimestamp.FindStringSubmatch(id)
	if m == nil {
		return time.Time{}
	}
	if t, ok := e.parseString(m[1]); ok {
		return t
	}
	return time.Time{}
}

// parseString parses a possibly hyphen-mangled encoding and clamps results
// that claim to be more than maxFutureSkew ahead of server time. Writer
// clocks drift; nothing in the log may postdate the server by more than the
// allowed skew.
func (e Extractor) parseString(s string) (time.Time, bool) {
	s = Repair(s)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
	}
	if err != nil {
		t, err = time.Parse("2006-01-02T15:04:05", s)
	}
	if err != nil {
		return time.Time{}, false
	}
	t = t.UTC()
	if now := e.now().UTC(); t.After(now.Add(maxFutureSkew)) {
		t = now
	}
	return t, true
}
