package docstore

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"

	"relaylog/pkg/logger"
)

// ErrNotFound is returned by Get for a missing document.
var ErrNotFound = errors.New("docstore: document not found")

// IsNotFound reports whether err means the requested document is absent.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// ErrBatchFull is returned when a batch would exceed MaxBatchOps.
var ErrBatchFull = fmt.Errorf("docstore: batch exceeds %d operations", MaxBatchOps)

// Pebble is a Client backed by an embedded pebble database. Keys take the
// form "doc:<collection>:<id>" so a collection is one contiguous key range.
type Pebble struct {
	db *pebble.DB
}

// Options tunes the underlying database.
type Options struct {
	// CacheBytes sizes the pebble block cache. Zero leaves the default.
	CacheBytes int64
}

// Open opens or creates the database at path.
func Open(path string, opts Options) (*Pebble, error) {
	logger.Info("opening_docstore", "path", path)
	po := &pebble.Options{}
	if opts.CacheBytes > 0 {
		po.Cache = pebble.NewCache(opts.CacheBytes)
		defer po.Cache.Unref()
	}
	db, err := pebble.Open(path, po)
	if err != nil {
		logger.Error("docstore_open_failed", "path", path, "error", err)
		return nil, err
	}
	logger.Info("docstore_opened", "path", path)
	return &Pebble{db: db}, nil
}

func key(collection, id string) []byte {
	return []byte("doc:" + collection + ":" + id)
}

func prefix(collection string) []byte {
	return []byte("doc:" + collection + ":")
}

// prefixUpperBound returns the smallest key greater than every key with the
// given prefix.
func prefixUpperBound(p []byte) []byte {
	ub := append([]byte(nil), p...)
	for i := len(ub) - 1; i >= 0; i-- {
		if ub[i] < 0xff {
			ub[i]++
			return ub[:i+1]
		}
	}
	return nil
}

func (p *Pebble) Get(collection, id string) (Doc, error) {
	val, closer, err := p.db.Get(key(collection, id))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return Doc{}, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
		}
		return Doc{}, err
	}
	defer closer.Close()
	data := append([]byte(nil), val...)
	return Doc{ID: id, Data: data}, nil
}

func (p *Pebble) List(collection string) ([]Doc, error) {
	pfx := prefix(collection)
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: pfx,
		UpperBound: prefixUpperBound(pfx),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var docs []Doc
	for iter.First(); iter.Valid(); iter.Next() {
		id := string(iter.Key()[len(pfx):])
		data := append([]byte(nil), iter.Value()...)
		docs = append(docs, Doc{ID: id, Data: data})
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (p *Pebble) Count(collection string) (int, error) {
	pfx := prefix(collection)
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: pfx,
		UpperBound: prefixUpperBound(pfx),
	})
	if err != nil {
		return 0, err
	}
	defer iter.Close()
	n := 0
	for iter.First(); iter.Valid(); iter.Next() {
		n++
	}
	if err := iter.Error(); err != nil {
		return 0, err
	}
	return n, nil
}

func (p *Pebble) Put(collection, id string, data []byte) error {
	return p.db.Set(key(collection, id), data, pebble.Sync)
}

func (p *Pebble) Delete(collection, id string) error {
	return p.db.Delete(key(collection, id), pebble.Sync)
}

func (p *Pebble) NewBatch() Batch {
	return &pebbleBatch{b: p.db.NewBatch()}
}

func (p *Pebble) Close() error {
	if err := p.db.Close(); err != nil {
		return err
	}
	logger.Info("docstore_closed")
	return nil
}

type pebbleBatch struct {
	b   *pebble.Batch
	ops int
}

func (pb *pebbleBatch) Set(collection, id string, data []byte) error {
	if pb.ops >= MaxBatchOps {
		return ErrBatchFull
	}
	if err := pb.b.Set(key(collection, id), data, nil); err != nil {
		return err
	}
	pb.ops++
	return nil
}

func (pb *pebbleBatch) Delete(collection, id string) error {
	if pb.ops >= MaxBatchOps {
		return ErrBatchFull
	}
	if err := pb.b.Delete(key(collection, id), nil); err != nil {
		return err
	}
	pb.ops++
	return nil
}

func (pb *pebbleBatch) Len() int { return pb.ops }

func (pb *pebbleBatch) Commit() error {
	return pb.b.Commit(pebble.Sync)
}

func (pb *pebbleBatch) Close() error { return pb.b.Close() }
