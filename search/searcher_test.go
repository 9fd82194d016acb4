package search

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/docindex/ai/mock"
	"github.com/poiesic/docindex/core"
	"github.com/poiesic/docindex/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// axisEmbedder maps known words onto fixed unit vectors so similarity is predictable.
func axisEmbedder() *mock.MockEmbedder {
	return mock.NewMockEmbedder().WithEmbedTextFunc(func(ctx context.Context, text string) ([]float32, error) {
		v := []float32{0.1, 0.1, 0.1}
		for _, w := range significantWords(text) {
			switch w {
			case "revenue":
				v[0] += 1
			case "weather":
				v[1] += 1
			case "europe":
				v[2] += 0.5
			}
		}
		return v, nil
	})
}

func seed(t *testing.T, idx *badger.ChunkIndex, embedder *mock.MockEmbedder, texts ...string) {
	t.Helper()
	ctx := context.Background()
	for i, text := range texts {
		vec, err := embedder.EmbedText(ctx, text)
		require.NoError(t, err)
		require.NoError(t, idx.Upsert(ctx, &core.ChunkRecord{
			ChunkID:    core.ChunkID("doc", i),
			DocumentID: "doc",
			Index:      i,
			Text:       text,
			Vector:     vec,
		}))
	}
}

func TestNewSearcher(t *testing.T) {
	idx, backend, err := badger.NewMemoryIndex()
	require.NoError(t, err)
	defer backend.Close()

	_, err = NewSearcher(nil, mock.NewMockEmbedder())
	assert.ErrorIs(t, err, ErrIndexRequired)
	_, err = NewSearcher(idx, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestSearch_RanksBySimilarity(t *testing.T) {
	idx, backend, err := badger.NewMemoryIndex()
	require.NoError(t, err)
	defer backend.Close()

	embedder := axisEmbedder()
	seed(t, idx, embedder,
		"revenue grew last quarter",
		"the weather was mild",
		"revenue in europe doubled",
	)

	s, err := NewSearcher(idx, embedder, WithMinSimilarity(0))
	require.NoError(t, err)

	results, err := s.Search(context.Background(), "revenue", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Contains(t, r.Record.Text, "revenue")
	}
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

func TestSearch_VerbatimBoost(t *testing.T) {
	idx, backend, err := badger.NewMemoryIndex()
	require.NoError(t, err)
	defer backend.Close()

	embedder := axisEmbedder()
	seed(t, idx, embedder,
		"revenue grew last quarter",
		"revenue in europe doubled",
	)

	s, err := NewSearcher(idx, embedder, WithMinSimilarity(0))
	require.NoError(t, err)

	results, err := s.Search(context.Background(), "Europe revenue?", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "revenue in europe doubled", results[0].Record.Text)
	assert.InDelta(t, results[0].Similarity+verbatimBoost, results[0].Score, 1e-6)
	assert.Equal(t, results[1].Similarity, results[1].Score)
}

func TestSearch_Errors(t *testing.T) {
	idx, backend, err := badger.NewMemoryIndex()
	require.NoError(t, err)
	defer backend.Close()

	boom := errors.New("embedding service down")
	embedder := mock.NewMockEmbedder().WithEmbedTextFunc(func(context.Context, string) ([]float32, error) {
		return nil, boom
	})
	s, err := NewSearcher(idx, embedder)
	require.NoError(t, err)

	_, err = s.Search(context.Background(), "   ", 3)
	assert.ErrorIs(t, err, ErrEmptyQuery)

	_, err = s.Search(context.Background(), "anything", 3)
	assert.ErrorIs(t, err, boom)

	results, err := s.Search(context.Background(), "anything", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchMany(t *testing.T) {
	idx, backend, err := badger.NewMemoryIndex()
	require.NoError(t, err)
	defer backend.Close()

	embedder := axisEmbedder()
	seed(t, idx, embedder,
		"revenue grew last quarter",
		"the weather was mild",
	)
	s, err := NewSearcher(idx, embedder, WithMinSimilarity(0))
	require.NoError(t, err)

	before := embedder.CallCount()
	all, err := s.SearchMany(context.Background(), []string{"weather", "revenue"}, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, embedder.CallCount()-before, "queries are embedded in one batch")
	require.Len(t, all, 2)
	require.Len(t, all[0], 1)
	require.Len(t, all[1], 1)
	assert.Equal(t, "the weather was mild", all[0][0].Record.Text)
	assert.Equal(t, "revenue grew last quarter", all[1][0].Record.Text)

	_, err = s.SearchMany(context.Background(), []string{"revenue", " "}, 1)
	assert.ErrorIs(t, err, ErrEmptyQuery)

	empty, err := s.SearchMany(context.Background(), []string{"revenue"}, 0)
	require.NoError(t, err)
	assert.Equal(t, [][]*Result{{}}, empty)
}

func TestSearchMany_EmbeddingMismatch(t *testing.T) {
	idx, backend, err := badger.NewMemoryIndex()
	require.NoError(t, err)
	defer backend.Close()

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return [][]float32{{1, 0}}, nil
	}
	s, err := NewSearcher(idx, embedder)
	require.NoError(t, err)

	_, err = s.SearchMany(context.Background(), []string{"a", "b"}, 3)
	assert.ErrorIs(t, err, ErrEmbeddingMismatch)
}

func TestContainsAll(t *testing.T) {
	assert.True(t, containsAll("Revenue, in Europe!", significantWords("europe revenue")))
	assert.False(t, containsAll("revenue only", significantWords("europe revenue")))
	assert.False(t, containsAll("anything", significantWords("the of and")))
}
