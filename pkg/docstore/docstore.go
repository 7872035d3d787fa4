// Package docstore provides a small document-oriented layer over an embedded
// key-value store. Documents are opaque JSON payloads addressed by
// collection and id.
package docstore

// MaxBatchOps caps the number of operations a single atomic batch may carry.
// Callers moving many documents must chunk their work into batches at or
// below this size.
const MaxBatchOps = 500

// Doc is a stored document.
type Doc struct {
	ID   string
	Data []byte
}

// Batch accumulates writes and deletes that commit atomically.
type Batch interface {
	// Set stages a document write. Returns an error once the batch holds
	// MaxBatchOps operations.
	Set(collection, id string, data []byte) error
	// Delete stages a document removal, counted against the same limit.
	Delete(collection, id string) error
	// Len reports the number of staged operations.
	Len() int
	// Commit applies all staged operations atomically and syncs.
	Commit() error
	// Close releases the batch without applying anything not committed.
	Close() error
}

// Client is the storage surface the rest of the service is built on.
type Client interface {
	// Get returns the document or an error satisfying IsNotFound.
	Get(collection, id string) (Doc, error)
	// List returns all documents in a collection in key order.
	List(collection string) ([]Doc, error)
	// Count returns the number of documents in a collection.
	Count(collection string) (int, error)
	// Put writes a single document.
	Put(collection, id string, data []byte) error
	// Delete removes a single document. Deleting an absent id is not an
	// error.
	Delete(collection, id string) error
	// NewBatch starts an atomic batch.
	NewBatch() Batch
	// Close flushes and closes the underlying store.
	Close() error
}
