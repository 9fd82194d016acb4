// Package pgvector provides a storage.VectorIndex on PostgreSQL with the
// pgvector extension. Similarity search uses the cosine distance operator.
package pgvector

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pgvector/pgvector-go"
	"github.com/poiesic/docindex/core"
	"github.com/poiesic/docindex/storage"
)

const bootstrapSQL = `
CREATE EXTENSION IF NOT EXISTS vector;
CREATE TABLE IF NOT EXISTS chunk_records (
	chunk_id    TEXT PRIMARY KEY,
	document_id TEXT NOT NULL,
	chunk_index INTEGER NOT NULL,
	text        TEXT NOT NULL,
	embedding   vector NOT NULL,
	metadata    JSONB NOT NULL DEFAULT '{}'::jsonb,
	indexed_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS chunk_records_document_id_idx ON chunk_records (document_id);
`

const upsertSQL = `
INSERT INTO chunk_records (chunk_id, document_id, chunk_index, text, embedding, metadata, indexed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (chunk_id) DO UPDATE SET
	document_id = EXCLUDED.document_id,
	chunk_index = EXCLUDED.chunk_index,
	text        = EXCLUDED.text,
	embedding   = EXCLUDED.embedding,
	metadata    = EXCLUDED.metadata,
	indexed_at  = EXCLUDED.indexed_at
`

const selectColumns = `chunk_id, document_id, chunk_index, text, embedding, metadata, indexed_at`

// Index implements storage.VectorIndex on PostgreSQL.
type Index struct {
	db *sql.DB
}

var _ storage.VectorIndex = (*Index)(nil)

// Open connects to databaseURL, verifies the connection and creates the
// schema if it does not exist.
func Open(ctx context.Context, databaseURL string) (*Index, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	idx := New(db)
	if err := idx.Bootstrap(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	return idx, nil
}

// New wraps an open database handle. The index takes ownership of db.
func New(db *sql.DB) *Index {
	return &Index{db: db}
}

// Bootstrap creates the extension, table and indexes if missing.
func (i *Index) Bootstrap(ctx context.Context) error {
	_, err := i.db.ExecContext(ctx, bootstrapSQL)
	return err
}

// Upsert writes all records in one transaction.
func (i *Index) Upsert(ctx context.Context, records ...*core.ChunkRecord) error {
	if len(records) == 0 {
		return nil
	}
	for _, record := range records {
		if err := core.ValidateChunkRecord(record); err != nil {
			return err
		}
	}

	tx, err := i.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, upsertSQL)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, record := range records {
		meta, err := encodeMetadata(record.Metadata)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		record.IndexedAt = now
		if _, err := stmt.ExecContext(ctx,
			record.ChunkID, record.DocumentID, record.Index, record.Text,
			pgvector.NewVector(record.Vector), meta, record.IndexedAt,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Get retrieves a single record by chunk ID.
func (i *Index) Get(ctx context.Context, chunkID string) (*core.ChunkRecord, error) {
	row := i.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM chunk_records WHERE chunk_id = $1`, chunkID)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, chunkID)
	}
	return record, err
}

// CountByDocument counts rows for a document.
func (i *Index) CountByDocument(ctx context.Context, documentID string) (int, error) {
	var n int
	err := i.db.QueryRowContext(ctx,
		`SELECT count(*) FROM chunk_records WHERE document_id = $1`, documentID).Scan(&n)
	return n, err
}

// FindSimilar ranks rows by cosine distance and converts distance to similarity.
func (i *Index) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SimilarityMatch, error) {
	if len(vector) == 0 || limit < 1 {
		return nil, storage.ErrInvalidQuery
	}

	rows, err := i.db.QueryContext(ctx, `
		SELECT `+selectColumns+`, 1 - (embedding <=> $1) AS score
		FROM chunk_records
		WHERE 1 - (embedding <=> $1) >= $2
		ORDER BY embedding <=> $1
		LIMIT $3`,
		pgvector.NewVector(vector), minSimilarity, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*core.SimilarityMatch
	for rows.Next() {
		var (
			record core.ChunkRecord
			emb    pgvector.Vector
			meta   []byte
			score  float64
		)
		if err := rows.Scan(&record.ChunkID, &record.DocumentID, &record.Index, &record.Text,
			&emb, &meta, &record.IndexedAt, &score); err != nil {
			return nil, err
		}
		record.Vector = emb.Slice()
		if record.Metadata, err = decodeMetadata(meta); err != nil {
			return nil, err
		}
		results = append(results, &core.SimilarityMatch{Record: &record, Score: float32(score)})
	}
	return results, rows.Err()
}

// Close closes the underlying database handle.
func (i *Index) Close() error {
	return i.db.Close()
}

func scanRecord(row *sql.Row) (*core.ChunkRecord, error) {
	var (
		record core.ChunkRecord
		emb    pgvector.Vector
		meta   []byte
	)
	if err := row.Scan(&record.ChunkID, &record.DocumentID, &record.Index, &record.Text,
		&emb, &meta, &record.IndexedAt); err != nil {
		return nil, err
	}
	record.Vector = emb.Slice()
	var err error
	if record.Metadata, err = decodeMetadata(meta); err != nil {
		return nil, err
	}
	return &record, nil
}

func encodeMetadata(m map[string]string) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}
	return b, nil
}

func decodeMetadata(b []byte) (map[string]string, error) {
	m := map[string]string{}
	if len(b) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}
	return m, nil
}
