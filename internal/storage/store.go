package storage

import (
	"context"
	"time"
)

// Record is an arbitrary JSON-serializable metadata document.
type Record map[string]any

// Entry pairs a metadata record with its key.
type Entry struct {
	Key    string
	Record Record
}

// Store combines blob, metadata and usage storage.
type Store interface {
	BlobStore
	MetadataStore
	UsageStore
	Close() error
}

// BlobStore is an opaque key-value store for document bytes.
type BlobStore interface {
	// PutBlob stores bytes under the key and returns the key.
	PutBlob(ctx context.Context, key string, data []byte) (string, error)

	// GetBlob retrieves the bytes stored under the key.
	GetBlob(ctx context.Context, key string) ([]byte, error)
}

// MetadataStore persists structured records about stored documents.
type MetadataStore interface {
	// PutMetadata upserts the record stored under the key.
	PutMetadata(ctx context.Context, key string, record Record) error

	// GetMetadata retrieves the record stored under the key.
	GetMetadata(ctx context.Context, key string) (Record, error)

	// ListMetadata returns all entries whose key starts with prefix,
	// ordered by key.
	ListMetadata(ctx context.Context, prefix string) ([]Entry, error)
}

// UsageStore tracks per-user consumption for quota decisions.
type UsageStore interface {
	// IncrementUsage charges one unit of the resource to the user on the
	// day containing at.
	IncrementUsage(ctx context.Context, userID, resource string, at time.Time) error

	// CountSince sums the user's consumption of the resource from the day
	// containing since onward.
	CountSince(ctx context.Context, userID, resource string, since time.Time) (int, error)
}
