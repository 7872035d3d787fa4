package store

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"relaylog/pkg/docstore"
	"relaylog/pkg/errs"
	"relaylog/pkg/models"
	"relaylog/pkg/timestamp"
)

var testBase = time.Date(2026, 2, 9, 1, 0, 0, 0, time.UTC)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLive(t *testing.T) (*Live, *clock, docstore.Client) {
	t.Helper()
	docs, err := docstore.Open(t.TempDir(), docstore.Options{})
	if err != nil {
		t.Fatalf("open docstore: %v", err)
	}
	t.Cleanup(func() { _ = docs.Close() })
	c := &clock{t: testBase}
	ext := timestamp.Extractor{Now: c.now}
	return NewLive(docs, ext, 5*time.Minute), c, docs
}

func append1(t *testing.T, l *Live, sender, text string, kind models.Kind) (string, bool) {
	t.Helper()
	id, merged, err := l.Append(models.Message{Sender: sender, Text: text, Kind: kind})
	if err != nil {
		t.Fatalf("append %q: %v", text, err)
	}
	return id, merged
}

func TestAppendMergesWithinWindow(t *testing.T) {
	l, c, _ := newTestLive(t)
	id1, merged := append1(t, l, "alice", "hello", models.KindMessage)
	if merged {
		t.Fatalf("first append reported merged")
	}
	c.advance(30 * time.Second)
	id2, merged := append1(t, l, "alice", "world", models.KindMessage)
	if !merged {
		t.Fatalf("second append should merge")
	}
	if id2 != id1 {
		t.Fatalf("merge landed in %q, want %q", id2, id1)
	}
	if n, _ := l.Count(); n != 1 {
		t.Fatalf("expected 1 stored document, got %d", n)
	}
	msgs, err := l.Recent(0, 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Text != "hello\n\nworld" {
		t.Fatalf("merged content: %+v", msgs)
	}
}

func TestAppendDifferentSenderCreates(t *testing.T) {
	l, c, _ := newTestLive(t)
	append1(t, l, "alice", "hello", models.KindMessage)
	c.advance(time.Second)
	_, merged := append1(t, l, "bob", "hi", models.KindMessage)
	if merged {
		t.Fatalf("cross-sender append must not merge")
	}
	if n, _ := l.Count(); n != 2 {
		t.Fatalf("expected 2 documents, got %d", n)
	}
}

func TestAppendBlockedKindCreates(t *testing.T) {
	l, c, _ := newTestLive(t)
	append1(t, l, "alice", "hello", models.KindMessage)
	c.advance(time.Second)
	_, merged := append1(t, l, "alice", "run ls", models.KindShellRequest)
	if merged {
		t.Fatalf("shell-request must not merge")
	}
	c.advance(time.Second)
	_, merged = append1(t, l, "alice", "after", models.KindMessage)
	if merged {
		t.Fatalf("message after blocked kind must not merge into it")
	}
}

func TestAppendOutsideWindowCreates(t *testing.T) {
	l, c, _ := newTestLive(t)
	append1(t, l, "alice", "hello", models.KindMessage)
	c.advance(6 * time.Minute)
	_, merged := append1(t, l, "alice", "later", models.KindMessage)
	if merged {
		t.Fatalf("append outside merge window must not merge")
	}
}

func TestRecentLimitAndOrder(t *testing.T) {
	l, c, _ := newTestLive(t)
	for i := 0; i < 5; i++ {
		append1(t, l, fmt.Sprintf("s%d", i), fmt.Sprintf("m%d", i), models.KindMessage)
		c.advance(time.Minute)
	}
	msgs, err := l.Recent(3, 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("limit: got %d messages", len(msgs))
	}
	if msgs[0].Text != "m2" || msgs[2].Text != "m4" {
		t.Fatalf("expected newest three in chronological order, got %+v", msgs)
	}
}

func TestEditKeepsTimestamp(t *testing.T) {
	l, c, _ := newTestLive(t)
	id, _ := append1(t, l, "alice", "befor", models.KindMessage)
	c.advance(time.Hour)
	if err := l.Edit(id, "before"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	msgs, _ := l.Recent(0, 0)
	if msgs[0].Text != "before" {
		t.Fatalf("edit text: %q", msgs[0].Text)
	}
	if !msgs[0].At.Equal(testBase) {
		t.Fatalf("edit must not bump timestamp, got %v", msgs[0].At)
	}
	if err := l.Edit("msg-unknown", "x"); errs.KindOf(err) != errs.KindNotFound {
		t.Fatalf("edit unknown id: %v", err)
	}
}

func TestDeleteOne(t *testing.T) {
	l, _, _ := newTestLive(t)
	id, _ := append1(t, l, "alice", "hello", models.KindMessage)
	if err := l.DeleteOne(id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	err := l.DeleteOne(id)
	if errs.KindOf(err) != errs.KindNotFound {
		t.Fatalf("second delete should be not-found, got %v", err)
	}
	var e *errs.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected classified error, got %T", err)
	}
}

func TestDeleteManySkipsUnknown(t *testing.T) {
	l, c, _ := newTestLive(t)
	id1, _ := append1(t, l, "alice", "a", models.KindMessage)
	c.advance(10 * time.Minute)
	id2, _ := append1(t, l, "bob", "b", models.KindMessage)
	n, err := l.DeleteMany([]string{id1, "msg-missing", id2})
	if err != nil {
		t.Fatalf("delete many: %v", err)
	}
	if n != 2 {
		t.Fatalf("deleted count: %d", n)
	}
	if left, _ := l.Count(); left != 0 {
		t.Fatalf("leftover documents: %d", left)
	}
}

func TestDeleteBySenderExact(t *testing.T) {
	l, c, _ := newTestLive(t)
	append1(t, l, "alice", "a1", models.KindMessage)
	c.advance(10 * time.Minute)
	append1(t, l, "bob", "b1", models.KindMessage)
	c.advance(10 * time.Minute)
	append1(t, l, "alice", "a2", models.KindMessage)
	n, err := l.DeleteBySender("alice")
	if err != nil {
		t.Fatalf("delete by sender: %v", err)
	}
	if n != 2 {
		t.Fatalf("deleted count: %d", n)
	}
	msgs, _ := l.Recent(0, 0)
	if len(msgs) != 1 || msgs[0].Sender != "bob" {
		t.Fatalf("survivors: %+v", msgs)
	}
}

func TestDeleteOlderThanIncludesUnknown(t *testing.T) {
	l, c, docs := newTestLive(t)
	append1(t, l, "alice", "old", models.KindMessage)
	// undated legacy record with an opaque id
	if err := docs.Put(ColLive, "legacy-1", []byte(`{"sender":"x","text":"undated"}`)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	c.advance(48 * time.Hour)
	append1(t, l, "alice", "new", models.KindMessage)
	n, err := l.DeleteOlderThan(testBase.Add(24 * time.Hour))
	if err != nil {
		t.Fatalf("delete older than: %v", err)
	}
	if n != 2 {
		t.Fatalf("deleted count: %d, want dated-old plus undated", n)
	}
	msgs, _ := l.Recent(0, 0)
	if len(msgs) != 1 || msgs[0].Text != "new" {
		t.Fatalf("survivors: %+v", msgs)
	}
}

func TestUndecodableDocStaysVisible(t *testing.T) {
	l, _, docs := newTestLive(t)
	if err := docs.Put(ColLive, "broken-1", []byte("not json")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	msgs, err := l.Recent(0, 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(msgs) != 1 || msgs[0].ID != "broken-1" || msgs[0].Text != "not json" {
		t.Fatalf("placeholder: %+v", msgs)
	}
	if err := l.DeleteOne("broken-1"); err != nil {
		t.Fatalf("placeholder must be deletable: %v", err)
	}
}
