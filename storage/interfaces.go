package storage

import (
	"context"
	"io"

	"github.com/poiesic/docindex/core"
)

// RawStore holds uploaded document bytes in a flat namespace keyed by document ID.
// Each ID is written once at upload and read many times afterwards.
// Implementations must be thread-safe.
type RawStore interface {
	// Put stores data under id.
	// Returns ErrDuplicateKey if id already exists; existing bytes are never replaced.
	Put(ctx context.Context, id string, data []byte) error

	// Get returns the complete contents stored under id.
	// Returns ErrNotFound if id doesn't exist.
	Get(ctx context.Context, id string) ([]byte, error)

	// Open returns a reader over the contents stored under id.
	// Returns ErrNotFound if id doesn't exist. The caller must close the reader.
	Open(ctx context.Context, id string) (io.ReadCloser, error)

	// Exists reports whether id has been stored.
	Exists(ctx context.Context, id string) (bool, error)

	// List returns every stored document ID in no particular order.
	List(ctx context.Context) ([]string, error)
}

// VectorIndex stores chunk records and answers similarity queries over their vectors.
// Implementations must be thread-safe.
type VectorIndex interface {
	// Upsert writes records keyed by ChunkID.
	// A record whose ChunkID already exists replaces the stored one.
	// Sets IndexedAt on each record.
	Upsert(ctx context.Context, records ...*core.ChunkRecord) error

	// Get retrieves a single record by chunk ID.
	// Returns ErrNotFound if the record doesn't exist.
	Get(ctx context.Context, chunkID string) (*core.ChunkRecord, error)

	// FindSimilar returns records whose cosine similarity to vector is >= minSimilarity,
	// ordered by similarity (highest first), up to limit results.
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SimilarityMatch, error)

	// CountByDocument returns the number of records stored for a document.
	CountByDocument(ctx context.Context, documentID string) (int, error)

	// Close releases resources held by the index.
	Close() error
}

// StatusRepository persists the outcome of each document's most recent ingestion.
type StatusRepository interface {
	// SaveStatus stores status, replacing any previous status for the same document.
	// Sets UpdatedAt automatically.
	SaveStatus(ctx context.Context, status *core.IngestStatus) error

	// LoadStatus retrieves the status for a document.
	// Returns nil, nil if the document has never been ingested.
	LoadStatus(ctx context.Context, documentID string) (*core.IngestStatus, error)
}
