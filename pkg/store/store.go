// Package store implements the message log on top of the document store:
// the live collection with merge-at-write, the archive with pagination, the
// compactor that moves aged messages between them, and typed admin
// documents.
package store

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"relaylog/pkg/docstore"
	"relaylog/pkg/logger"
	"relaylog/pkg/models"
	"relaylog/pkg/timestamp"
)

// Collection names within the document store.
const (
	ColLive    = "live"
	ColArchive = "archive"
	ColAdmin   = "admin"
)

// NewID builds a message id embedding its creation instant. Colons in the
// time-of-day are replaced with hyphens so the id stays safe in paths and
// URLs; the extractor knows how to read the prefix back.
func NewID(now time.Time) string {
	ts := now.UTC().Format("2006-01-02T15-04-05Z")
	frag := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return "msg-" + ts + "-" + frag
}

// loadMessages reads and decodes a whole collection, resolving each
// message's authoritative timestamp. A document that fails to decode is kept
// as an unknown-timestamp placeholder rather than dropped, so it remains
// visible and deletable.
func loadMessages(docs docstore.Client, ext timestamp.Extractor, collection string) ([]models.Message, error) {
	raw, err := docs.List(collection)
	if err != nil {
		return nil, err
	}
	msgs := make([]models.Message, 0, len(raw))
	for _, d := range raw {
		var m models.Message
		if err := json.Unmarshal(d.Data, &m); err != nil {
			logger.Warn("message_decode_failed", "collection", collection, "id", d.ID, "error", err)
			m = models.Message{ID: d.ID, Text: string(d.Data)}
		}
		m.ID = d.ID
		m.At = ext.Extract(m.TS, m.ID)
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// sortChronological orders messages oldest first. Unknown timestamps sort
// before all dated messages; ties break on id so the order is stable across
// reads.
func sortChronological(msgs []models.Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		a, b := msgs[i], msgs[j]
		if a.At.IsZero() != b.At.IsZero() {
			return a.At.IsZero()
		}
		if !a.At.Equal(b.At) {
			return a.At.Before(b.At)
		}
		return a.ID < b.ID
	})
}
