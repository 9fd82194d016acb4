package badger

import (
	"context"
	"errors"
	"math"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docindex/core"
	"github.com/poiesic/docindex/storage"
)

// ChunkIndex implements storage.VectorIndex for BadgerDB.
// Similarity search is a full scan over stored vectors.
type ChunkIndex struct {
	backend *Backend
}

var _ storage.VectorIndex = (*ChunkIndex)(nil)

// NewChunkIndex creates a ChunkIndex on an open backend.
// Closing the index does not close the backend.
func NewChunkIndex(backend *Backend) *ChunkIndex {
	return &ChunkIndex{backend: backend}
}

// Upsert writes records keyed by ChunkID, replacing any existing record with the same ID.
func (c *ChunkIndex) Upsert(ctx context.Context, records ...*core.ChunkRecord) error {
	if c.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	for _, record := range records {
		if err := core.ValidateChunkRecord(record); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	return c.backend.Update(func(tx *badger.Txn) error {
		for _, record := range records {
			if err := ctx.Err(); err != nil {
				return err
			}
			record.IndexedAt = now
			if err := tx.Set(makeChunkRecordKey(record.ChunkID), storage.MarshalChunkRecord(record)); err != nil {
				return err
			}
			if err := tx.Set(makeChunkDocumentKey(record.DocumentID, record.ChunkID), nil); err != nil {
				return err
			}
		}
		return nil
	})
}

// Get retrieves a single record by chunk ID.
func (c *ChunkIndex) Get(ctx context.Context, chunkID string) (*core.ChunkRecord, error) {
	if c.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	var record *core.ChunkRecord
	err := c.backend.View(func(tx *badger.Txn) error {
		item, err := tx.Get(makeChunkRecordKey(chunkID))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			record, unmarshalErr = storage.UnmarshalChunkRecord(val)
			return unmarshalErr
		})
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// CountByDocument returns the number of chunk records stored for documentID.
func (c *ChunkIndex) CountByDocument(ctx context.Context, documentID string) (int, error) {
	if c.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}
	count := 0
	err := c.backend.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = makePartialChunkDocumentKey(documentID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// FindSimilar scans every stored record and returns those whose cosine similarity
// to vector is at least minSimilarity.
func (c *ChunkIndex) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SimilarityMatch, error) {
	if c.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	if len(vector) == 0 || limit < 1 {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.SimilarityMatch

	err := c.backend.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var record *core.ChunkRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalChunkRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if record == nil || len(record.Vector) == 0 {
				continue
			}

			similarity := cosineSimilarity(vector, record.Vector)
			if similarity >= minSimilarity {
				results = append(results, &core.SimilarityMatch{
					Record: record,
					Score:  similarity,
				})
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b *core.SimilarityMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// Close is a no-op; the backend is owned by the caller.
func (c *ChunkIndex) Close() error {
	return nil
}

// cosineSimilarity computes the cosine of the angle between a and b.
// Vectors of different lengths are compared over their common prefix.
func cosineSimilarity(a, b []float32) float32 {
	var dot, normA, normB float64
	minLen := min(len(a), len(b))
	for i := 0; i < minLen; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
