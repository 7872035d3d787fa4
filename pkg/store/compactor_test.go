package store

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"relaylog/pkg/docstore"
	"relaylog/pkg/errs"
	"relaylog/pkg/models"
	"relaylog/pkg/timestamp"
)

func newTestCompactor(t *testing.T, keepLive, maxPerRun int) (*Compactor, docstore.Client, timestamp.Extractor) {
	t.Helper()
	docs, err := docstore.Open(t.TempDir(), docstore.Options{})
	if err != nil {
		t.Fatalf("open docstore: %v", err)
	}
	t.Cleanup(func() { _ = docs.Close() })
	ext := timestamp.Extractor{Now: func() time.Time { return testBase.Add(365 * 24 * time.Hour) }}
	return NewCompactor(docs, ext, keepLive, maxPerRun), docs, ext
}

func seedLive(t *testing.T, docs docstore.Client, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		at := testBase.Add(time.Duration(i) * time.Minute)
		id := fmt.Sprintf("msg-%s-%04d", at.Format("2006-01-02T15-04-05Z"), i)
		m := models.Message{
			ID: id, Sender: "alice", Text: fmt.Sprintf("m%d", i),
			TS: models.StructuredTime(at),
		}
		data, _ := json.Marshal(m)
		if err := docs.Put(ColLive, id, data); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
		ids = append(ids, id)
	}
	return ids
}

func TestCompactRelocatesOldest(t *testing.T) {
	c, docs, ext := newTestCompactor(t, 100, 0)
	ids := seedLive(t, docs, 150)

	moved, err := c.Compact(0, 0)
	if err != nil {
		t.Fatalf("compact: %v", err)
	}
	if moved != 50 {
		t.Fatalf("relocated %d, want 50", moved)
	}
	if n, _ := docs.Count(ColLive); n != 100 {
		t.Fatalf("live count after compact: %d", n)
	}
	if n, _ := docs.Count(ColArchive); n != 50 {
		t.Fatalf("archive count after compact: %d", n)
	}
	if remaining, _ := c.RemainingLive(); remaining != 100 {
		t.Fatalf("remaining live %d, want 100", remaining)
	}

	// the 50 oldest moved, the 100 newest stayed
	archived, _ := loadMessages(docs, ext, ColArchive)
	seen := map[string]bool{}
	for _, m := range archived {
		seen[m.ID] = true
		if m.ArchivedAt == 0 {
			t.Fatalf("archived message %s missing archived_at", m.ID)
		}
	}
	for i, id := range ids {
		if i < 50 && !seen[id] {
			t.Fatalf("oldest message %s not archived", id)
		}
		if i >= 50 && seen[id] {
			t.Fatalf("recent message %s wrongly archived", id)
		}
	}
	// union preserved, no id in both collections
	for _, id := range ids {
		_, liveErr := docs.Get(ColLive, id)
		_, archErr := docs.Get(ColArchive, id)
		liveHas := liveErr == nil
		archHas := archErr == nil
		if liveHas == archHas {
			t.Fatalf("id %s: live=%v archive=%v", id, liveHas, archHas)
		}
	}
}

func TestCompactOverrideBoundReportsLiveCount(t *testing.T) {
	// the request bound wins over the configured high-water mark, and the
	// reported remainder is the actual live count afterwards
	c, docs, _ := newTestCompactor(t, 100, 0)
	seedLive(t, docs, 120)
	moved, err := c.Compact(20, 0)
	if err != nil {
		t.Fatalf("compact: %v", err)
	}
	if moved != 100 {
		t.Fatalf("relocated %d, want 100", moved)
	}
	if remaining, _ := c.RemainingLive(); remaining != 20 {
		t.Fatalf("remaining live %d, want 20", remaining)
	}
}

func TestCompactUnderHighWaterNoop(t *testing.T) {
	c, docs, _ := newTestCompactor(t, 100, 0)
	seedLive(t, docs, 80)
	moved, err := c.Compact(0, 0)
	if err != nil {
		t.Fatalf("compact: %v", err)
	}
	if moved != 0 {
		t.Fatalf("relocated %d, want 0", moved)
	}
	if n, _ := docs.Count(ColArchive); n != 0 {
		t.Fatalf("archive should stay empty, got %d", n)
	}
}

func TestCompactMaxPerRunCap(t *testing.T) {
	c, docs, _ := newTestCompactor(t, 10, 30)
	seedLive(t, docs, 100)
	moved, err := c.Compact(0, 0)
	if err != nil {
		t.Fatalf("compact: %v", err)
	}
	if moved != 30 {
		t.Fatalf("relocated %d, want cap of 30", moved)
	}
	remaining, err := c.RemainingLive()
	if err != nil {
		t.Fatalf("remaining: %v", err)
	}
	if remaining != 70 {
		t.Fatalf("remaining live %d, want 70", remaining)
	}
}

func TestCompactIdempotentRerun(t *testing.T) {
	c, docs, _ := newTestCompactor(t, 100, 0)
	seedLive(t, docs, 150)
	if _, err := c.Compact(0, 0); err != nil {
		t.Fatalf("first run: %v", err)
	}
	moved, err := c.Compact(0, 0)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if moved != 0 {
		t.Fatalf("rerun relocated %d, want 0", moved)
	}
	if n, _ := docs.Count(ColLive); n != 100 {
		t.Fatalf("live count drifted on rerun: %d", n)
	}
}

// flakyStore wraps a real client and refuses batch commits after a set
// number of successes.
type flakyStore struct {
	docstore.Client
	commitsLeft int
}

func (f *flakyStore) NewBatch() docstore.Batch {
	return &flakyBatch{Batch: f.Client.NewBatch(), store: f}
}

type flakyBatch struct {
	docstore.Batch
	store *flakyStore
}

func (b *flakyBatch) Commit() error {
	if b.store.commitsLeft <= 0 {
		return fmt.Errorf("commit refused")
	}
	b.store.commitsLeft--
	return b.Batch.Commit()
}

func TestCompactPartialFailureReportsProgress(t *testing.T) {
	docs, err := docstore.Open(t.TempDir(), docstore.Options{})
	if err != nil {
		t.Fatalf("open docstore: %v", err)
	}
	t.Cleanup(func() { _ = docs.Close() })
	flaky := &flakyStore{Client: docs, commitsLeft: 1}
	ext := timestamp.Extractor{Now: func() time.Time { return testBase.Add(365 * 24 * time.Hour) }}
	c := NewCompactor(flaky, ext, 10, 0)

	// 10 kept + 600 to move = three batches; only the first commit succeeds
	seedLive(t, docs, 610)
	moved, err := c.Compact(0, 0)
	if errs.KindOf(err) != errs.KindPartialCompaction {
		t.Fatalf("expected partial compaction error, got %v", err)
	}
	if moved != moveBatchMsgs || errs.RelocatedCount(err) != moveBatchMsgs {
		t.Fatalf("progress: moved=%d carried=%d want %d", moved, errs.RelocatedCount(err), moveBatchMsgs)
	}
	if n, _ := docs.Count(ColArchive); n != moveBatchMsgs {
		t.Fatalf("archive count after failure: %d", n)
	}
	if n, _ := docs.Count(ColLive); n != 610-moveBatchMsgs {
		t.Fatalf("live count after failure: %d", n)
	}

	// a rerun picks up where the failed run stopped
	flaky.commitsLeft = 100
	moved, err = c.Compact(0, 0)
	if err != nil {
		t.Fatalf("rerun: %v", err)
	}
	if moved != 600-moveBatchMsgs {
		t.Fatalf("rerun relocated %d, want %d", moved, 600-moveBatchMsgs)
	}
	if n, _ := docs.Count(ColLive); n != 10 {
		t.Fatalf("live count after rerun: %d", n)
	}
	if n, _ := docs.Count(ColArchive); n != 600 {
		t.Fatalf("archive count after rerun: %d", n)
	}
}

func TestCompactSpansMultipleBatches(t *testing.T) {
	c, docs, _ := newTestCompactor(t, 10, 0)
	total := moveBatchMsgs + 60
	seedLive(t, docs, total+10)
	moved, err := c.Compact(0, 0)
	if err != nil {
		t.Fatalf("compact: %v", err)
	}
	if moved != total {
		t.Fatalf("relocated %d, want %d", moved, total)
	}
	if n, _ := docs.Count(ColLive); n != 10 {
		t.Fatalf("live count: %d", n)
	}
	if n, _ := docs.Count(ColArchive); n != total {
		t.Fatalf("archive count: %d", n)
	}
}
