package store

import (
	"encoding/json"
	"time"

	"relaylog/pkg/coalesce"
	"relaylog/pkg/docstore"
	"relaylog/pkg/errs"
	"relaylog/pkg/logger"
	"relaylog/pkg/models"
	"relaylog/pkg/timestamp"
)

// Live is the recent, queryable portion of the message log.
type Live struct {
	docs   docstore.Client
	ext    timestamp.Extractor
	window time.Duration
	now    func() time.Time
}

// NewLive wires the live log. window controls merge-at-write and
// merge-at-read behavior; zero selects the default.
func NewLive(docs docstore.Client, ext timestamp.Extractor, window time.Duration) *Live {
	if window <= 0 {
		window = coalesce.DefaultWindow
	}
	now := ext.Now
	if now == nil {
		now = time.Now
	}
	return &Live{docs: docs, ext: ext, window: window, now: now}
}

// Window returns the configured merge window.
func (l *Live) Window() time.Duration { return l.window }

// Append stores a message, first attempting to fold it into the newest live
// message from the same sender. Exactly one document is created or one is
// updated. Returns the id the message landed in and whether it merged.
//
// Appends racing each other may both miss the merge and create two
// documents; the read path coalesces them, so the outcome is cosmetic.
func (l *Live) Append(m models.Message) (string, bool, error) {
	now := l.now().UTC()
	if m.TS.Kind == models.TSAbsent {
		m.TS = models.StructuredTime(now)
	}
	m.At = l.ext.Extract(m.TS, m.ID)

	msgs, err := loadMessages(l.docs, l.ext, ColLive)
	if err != nil {
		return "", false, errs.Unavailable("listing live messages", err)
	}
	sortChronological(msgs)

	if len(msgs) > 0 {
		latest := msgs[len(msgs)-1]
		if coalesce.CanMerge(latest, m, l.window) {
			merged := coalesce.Merge(latest, m)
			data, err := json.Marshal(merged)
			if err != nil {
				return "", false, err
			}
			if err := l.docs.Put(ColLive, merged.ID, data); err != nil {
				return "", false, errs.Unavailable("updating merged message", err)
			}
			logger.Info("message_merged", "id", merged.ID, "sender", merged.Sender)
			return merged.ID, true, nil
		}
	}

	if m.ID == "" {
		m.ID = NewID(now)
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", false, err
	}
	if err := l.docs.Put(ColLive, m.ID, data); err != nil {
		return "", false, errs.Unavailable("saving message", err)
	}
	logger.Info("message_saved", "id", m.ID, "sender", m.Sender)
	return m.ID, false, nil
}

// Recent returns up to limit of the newest live messages in chronological
// order, with same-sender runs coalesced. limit <= 0 returns everything.
// Limiting happens before coalescing so a page boundary never splits a
// mergeable run oddly between calls.
func (l *Live) Recent(limit int, window time.Duration) ([]models.Message, error) {
	if window <= 0 {
		window = l.window
	}
	msgs, err := loadMessages(l.docs, l.ext, ColLive)
	if err != nil {
		return nil, errs.Unavailable("listing live messages", err)
	}
	sortChronological(msgs)
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return coalesce.Coalesce(msgs, window), nil
}

// Edit replaces the text of a stored message. The timestamp is untouched so
// editing never reorders the log.
func (l *Live) Edit(id, text string) error {
	doc, err := l.docs.Get(ColLive, id)
	if err != nil {
		if docstore.IsNotFound(err) {
			return errs.NotFound("message " + id)
		}
		return errs.Unavailable("loading message", err)
	}
	var m models.Message
	if err := json.Unmarshal(doc.Data, &m); err != nil {
		return errs.Wrap(errs.KindMalformed, "stored message undecodable", err)
	}
	m.ID = id
	m.Text = text
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := l.docs.Put(ColLive, id, data); err != nil {
		return errs.Unavailable("updating message", err)
	}
	logger.Info("message_edited", "id", id)
	return nil
}

// DeleteOne removes a single live message, reporting not-found for unknown
// ids.
func (l *Live) DeleteOne(id string) error {
	if _, err := l.docs.Get(ColLive, id); err != nil {
		if docstore.IsNotFound(err) {
			return errs.NotFound("message " + id)
		}
		return errs.Unavailable("loading message", err)
	}
	if err := l.docs.Delete(ColLive, id); err != nil {
		return errs.Unavailable("deleting message", err)
	}
	logger.Info("message_deleted", "id", id)
	return nil
}

// DeleteMany removes the given ids, skipping unknown ones, and returns the
// number removed. Work is chunked into atomic batches.
func (l *Live) DeleteMany(ids []string) (int, error) {
	present := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := l.docs.Get(ColLive, id); err != nil {
			if docstore.IsNotFound(err) {
				continue
			}
			return 0, errs.Unavailable("loading message", err)
		}
		present = append(present, id)
	}
	n, err := l.deleteBatched(present)
	if err != nil {
		return n, err
	}
	logger.Info("messages_deleted", "count", n)
	return n, nil
}

// DeleteBySender removes every live message from sender and returns the
// count removed. Messages merged into a different sender's run are not
// stored under this sender and are untouched.
func (l *Live) DeleteBySender(sender string) (int, error) {
	msgs, err := loadMessages(l.docs, l.ext, ColLive)
	if err != nil {
		return 0, errs.Unavailable("listing live messages", err)
	}
	var ids []string
	for _, m := range msgs {
		if m.Sender == sender {
			ids = append(ids, m.ID)
		}
	}
	n, err := l.deleteBatched(ids)
	if err != nil {
		return n, err
	}
	logger.Info("messages_deleted_by_sender", "sender", sender, "count", n)
	return n, nil
}

// DeleteOlderThan removes live messages dated before cutoff. Messages with
// unknown timestamps are treated as oldest and removed too.
func (l *Live) DeleteOlderThan(cutoff time.Time) (int, error) {
	msgs, err := loadMessages(l.docs, l.ext, ColLive)
	if err != nil {
		return 0, errs.Unavailable("listing live messages", err)
	}
	var ids []string
	for _, m := range msgs {
		if m.At.IsZero() || m.At.Before(cutoff) {
			ids = append(ids, m.ID)
		}
	}
	n, err := l.deleteBatched(ids)
	if err != nil {
		return n, err
	}
	logger.Info("messages_deleted_older_than", "cutoff", cutoff.UTC(), "count", n)
	return n, nil
}

// Count returns the number of live documents.
func (l *Live) Count() (int, error) {
	n, err := l.docs.Count(ColLive)
	if err != nil {
		return 0, errs.Unavailable("counting live messages", err)
	}
	return n, nil
}

func (l *Live) deleteBatched(ids []string) (int, error) {
	deleted := 0
	for len(ids) > 0 {
		chunk := ids
		if len(chunk) > docstore.MaxBatchOps {
			chunk = chunk[:docstore.MaxBatchOps]
		}
		ids = ids[len(chunk):]
		b := l.docs.NewBatch()
		for _, id := range chunk {
			if err := b.Delete(ColLive, id); err != nil {
				_ = b.Close()
				return deleted, errs.Unavailable("staging delete", err)
			}
		}
		if err := b.Commit(); err != nil {
			_ = b.Close()
			return deleted, errs.Unavailable("committing delete batch", err)
		}
		_ = b.Close()
		deleted += len(chunk)
	}
	return deleted, nil
}
