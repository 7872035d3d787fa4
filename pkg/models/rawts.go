package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// TimestampKind tags the stored representation of a message timestamp.
type TimestampKind int

const (
	// TSAbsent means the field was missing or null.
	TSAbsent TimestampKind = iota
	// TSTime is a structured point in time, stored as {"seconds":..,"nanos":..}.
	// This source is trusted.
	TSTime
	// TSString is a writer-encoded string, possibly with hyphenated
	// time-of-day separators.
	TSString
	// TSMillis is a numeric value, milliseconds since epoch.
	TSMillis
)

// RawTimestamp is the tagged variant for the stored "ts" field. Writers are
// not consistent about how they encode timestamps, so the field is kept
// verbatim and resolved through the timestamp extractor; it is never read
// raw for ordering.
type RawTimestamp struct {
	Kind   TimestampKind
	Time   time.Time
	Str    string
	Millis int64
}

// StructuredTime returns a trusted structured timestamp variant.
func StructuredTime(t time.Time) RawTimestamp {
	return RawTimestamp{Kind: TSTime, Time: t.UTC()}
}

// EncodedString returns a string-encoded timestamp variant.
func EncodedString(s string) RawTimestamp {
	return RawTimestamp{Kind: TSString, Str: s}
}

// EpochMillis returns a numeric timestamp variant.
func EpochMillis(ms int64) RawTimestamp {
	return RawTimestamp{Kind: TSMillis, Millis: ms}
}

type structuredTS struct {
	Seconds int64 `json:"seconds"`
	Nanos   int64 `json:"nanos"`
}

// MarshalJSON writes the variant back in the representation it was read
// with, so round-tripping a record never rewrites another writer's encoding.
func (r RawTimestamp) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case TSTime:
		t := r.Time.UTC()
		return json.Marshal(structuredTS{Seconds: t.Unix(), Nanos: int64(t.Nanosecond())})
	case TSString:
		return json.Marshal(r.Str)
	case TSMillis:
		return []byte(strconv.FormatInt(r.Millis, 10)), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON sniffs the JSON shape and tags the variant accordingly.
// Unrecognized shapes degrade to TSAbsent rather than failing the record.
func (r *RawTimestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*r = RawTimestamp{Kind: TSAbsent}
		return nil
	}
	switch b[0] {
	case '{':
		var s structuredTS
		if err := json.Unmarshal(b, &s); err != nil {
			*r = RawTimestamp{Kind: TSAbsent}
			return nil
		}
		*r = RawTimestamp{Kind: TSTime, Time: time.Unix(s.Seconds, s.Nanos).UTC()}
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*r = RawTimestamp{Kind: TSAbsent}
			return nil
		}
		*r = RawTimestamp{Kind: TSString, Str: s}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		*r = RawTimestamp{Kind: TSAbsent}
		return nil
	}
	if i, err := n.Int64(); err == nil {
		*r = RawTimestamp{Kind: TSMillis, Millis: i}
		return nil
	}
	if f, err := n.Float64(); err == nil {
		*r = RawTimestamp{Kind: TSMillis, Millis: int64(f)}
		return nil
	}
	*r = RawTimestamp{Kind: TSAbsent}
	return nil
}

func (r RawTimestamp) String() string {
	switch r.Kind {
	case TSTime:
		return r.Time.UTC().Format(time.RFC3339Nano)
	case TSString:
		return r.Str
	case TSMillis:
		return fmt.Sprintf("%dms", r.Millis)
	default:
		return "absent"
	}
}
