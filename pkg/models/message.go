package models

import "time"

// Kind categorizes a message. Ordinary chat content is safe to coalesce;
// kinds that carry structured side effects are not.
type Kind string

const (
	KindMessage      Kind = "message"
	KindTaskCreated  Kind = "task-created"
	KindTask         Kind = "task"
	KindModeChange   Kind = "mode-change"
	KindShellRequest Kind = "shell-request"
	KindThought      Kind = "thought"
)

// nonMergeable holds the kinds whose side effects would be corrupted by
// collapsing two messages into one (e.g. a task trigger).
var nonMergeable = map[Kind]struct{}{
	KindTaskCreated:  {},
	KindTask:         {},
	KindModeChange:   {},
	KindShellRequest: {},
}

// Mergeable reports whether messages of this kind may be coalesced.
// The empty kind is treated as an ordinary message.
func (k Kind) Mergeable() bool {
	_, blocked := nonMergeable[k]
	return !blocked
}

// Valid reports whether k is a known kind. The empty kind is accepted and
// normalized to KindMessage on write.
func (k Kind) Valid() bool {
	switch k {
	case "", KindMessage, KindTaskCreated, KindTask, KindModeChange, KindShellRequest, KindThought:
		return true
	}
	return false
}

// Message is a single log entry. The stored timestamp field is a tagged
// variant because writers encode it inconsistently; all ordering decisions
// use At, the authoritative value derived by the timestamp extractor.
type Message struct {
	ID        string       `json:"id"`
	Sender    string       `json:"sender"`
	Recipient string       `json:"recipient,omitempty"`
	Text      string       `json:"text"`
	Kind      Kind         `json:"kind,omitempty"`
	TS        RawTimestamp `json:"ts"`
	// ArchivedAt records the relocation time (unix millis) once the message
	// has been moved to the archive collection. Zero while live.
	ArchivedAt int64 `json:"archived_at,omitempty"`

	// At is the authoritative timestamp, derived on read and never
	// persisted. The zero value means unknown and sorts oldest.
	At time.Time `json:"-"`
}
