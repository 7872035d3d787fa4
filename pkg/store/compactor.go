package store

import (
	"encoding/json"
	"time"

	"relaylog/pkg/docstore"
	"relaylog/pkg/errs"
	"relaylog/pkg/logger"
	"relaylog/pkg/models"
	"relaylog/pkg/timestamp"
)

// Compaction defaults. KeepLive is the high-water mark of messages kept in
// the live collection; MaxPerRun bounds the work of one run.
const (
	DefaultKeepLive  = 1000
	DefaultMaxPerRun = 5000
)

// moveBatchMsgs is how many messages one atomic batch relocates. Each
// message costs two operations, an archive write and a live delete, so the
// batch stays within the document store's operation cap.
const moveBatchMsgs = docstore.MaxBatchOps / 2

// Compactor relocates the oldest live messages into the archive.
type Compactor struct {
	docs      docstore.Client
	ext       timestamp.Extractor
	keepLive  int
	maxPerRun int
	now       func() time.Time
}

func NewCompactor(docs docstore.Client, ext timestamp.Extractor, keepLive, maxPerRun int) *Compactor {
	if keepLive <= 0 {
		keepLive = DefaultKeepLive
	}
	if maxPerRun <= 0 {
		maxPerRun = DefaultMaxPerRun
	}
	now := ext.Now
	if now == nil {
		now = time.Now
	}
	return &Compactor{docs: docs, ext: ext, keepLive: keepLive, maxPerRun: maxPerRun, now: now}
}

// Compact moves the oldest live messages to the archive until at most
// keepLive remain, moving no more than maxPerRun in one call. Overrides of
// zero fall back to the configured values.
//
// Each batch commits atomically, so a message is never visible in both
// collections or in neither. A failure mid-run returns a partial-compaction
// error carrying how many messages already moved; rerunning picks up where
// it left off.
func (c *Compactor) Compact(keepLive, maxPerRun int) (int, error) {
	if keepLive <= 0 {
		keepLive = c.keepLive
	}
	if maxPerRun <= 0 {
		maxPerRun = c.maxPerRun
	}

	msgs, err := loadMessages(c.docs, c.ext, ColLive)
	if err != nil {
		return 0, errs.Unavailable("listing live messages", err)
	}
	if len(msgs) <= keepLive {
		return 0, nil
	}
	sortChronological(msgs)

	moveCount := len(msgs) - keepLive
	if moveCount > maxPerRun {
		moveCount = maxPerRun
	}
	oldest := msgs[:moveCount]
	archivedAt := c.now().UTC().UnixMilli()

	relocated := 0
	for len(oldest) > 0 {
		chunk := oldest
		if len(chunk) > moveBatchMsgs {
			chunk = chunk[:moveBatchMsgs]
		}
		oldest = oldest[len(chunk):]
		if err := c.moveBatch(chunk, archivedAt); err != nil {
			return relocated, errs.PartialCompaction(relocated, err)
		}
		relocated += len(chunk)
	}
	logger.Info("compaction_complete", "relocated", relocated, "keep_live", keepLive)
	return relocated, nil
}

func (c *Compactor) moveBatch(msgs []models.Message, archivedAt int64) error {
	b := c.docs.NewBatch()
	defer b.Close()
	for _, m := range msgs {
		m.ArchivedAt = archivedAt
		data, err := json.Marshal(m)
		if err != nil {
			return err
		}
		if err := b.Set(ColArchive, m.ID, data); err != nil {
			return err
		}
		if err := b.Delete(ColLive, m.ID); err != nil {
			return err
		}
	}
	return b.Commit()
}

// RemainingLive reports how many messages remain in the live collection.
func (c *Compactor) RemainingLive() (int, error) {
	n, err := c.docs.Count(ColLive)
	if err != nil {
		return 0, errs.Unavailable("counting live messages", err)
	}
	return n, nil
}
