package pgvector

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/poiesic/docindex/core"
	"github.com/poiesic/docindex/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataCodec(t *testing.T) {
	b, err := encodeMetadata(map[string]string{"chunk_index": "intro", "filename": "a.pdf"})
	require.NoError(t, err)

	m, err := decodeMetadata(b)
	require.NoError(t, err)
	assert.Equal(t, "intro", m["chunk_index"])
	assert.Equal(t, "a.pdf", m["filename"])

	b, err = encodeMetadata(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(b))

	m, err = decodeMetadata(nil)
	require.NoError(t, err)
	assert.Empty(t, m)

	_, err = decodeMetadata([]byte("not json"))
	assert.ErrorIs(t, err, storage.ErrSerializationFailed)
}

// TestIndex_Postgres runs against a real database when DOCINDEX_TEST_PG_URL is set.
func TestIndex_Postgres(t *testing.T) {
	url := os.Getenv("DOCINDEX_TEST_PG_URL")
	if url == "" {
		t.Skip("DOCINDEX_TEST_PG_URL not set")
	}
	ctx := context.Background()
	idx, err := Open(ctx, url)
	require.NoError(t, err)
	defer idx.Close()

	docID := uuid.NewString()
	records := []*core.ChunkRecord{
		{ChunkID: core.ChunkID(docID, 0), DocumentID: docID, Index: 0, Text: "north", Vector: []float32{0, 1, 0}},
		{ChunkID: core.ChunkID(docID, 1), DocumentID: docID, Index: 1, Text: "east", Vector: []float32{1, 0, 0}},
	}
	require.NoError(t, idx.Upsert(ctx, records...))
	require.NoError(t, idx.Upsert(ctx, records[0]))

	count, err := idx.CountByDocument(ctx, docID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	got, err := idx.Get(ctx, core.ChunkID(docID, 1))
	require.NoError(t, err)
	assert.Equal(t, "east", got.Text)

	_, err = idx.Get(ctx, core.ChunkID(docID, 9))
	assert.ErrorIs(t, err, storage.ErrNotFound)

	matches, err := idx.FindSimilar(ctx, []float32{0, 1, 0}, 0.99, 5)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, "north", matches[0].Record.Text)
}
