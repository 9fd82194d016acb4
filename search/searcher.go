package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/poiesic/docindex/ai"
	"github.com/poiesic/docindex/core"
	"github.com/poiesic/docindex/storage"
)

const (
	defaultMinSimilarity = 0.3
	// verbatimBoost is added when a chunk contains every significant query word.
	verbatimBoost = 0.3
	// candidateFactor widens the index query so reranking can promote
	// verbatim hits that sit just below the top k.
	candidateFactor = 3
)

// Result is one ranked chunk.
type Result struct {
	Record *core.ChunkRecord
	// Similarity is the cosine similarity reported by the index.
	Similarity float32
	// Score is the ranking score: Similarity plus any verbatim boost.
	Score float32
}

// Searcher runs semantic search over chunk records.
type Searcher struct {
	index         storage.VectorIndex
	embedder      ai.Embedder
	minSimilarity float32
	logger        *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithMinSimilarity drops matches below the given cosine similarity.
func WithMinSimilarity(min float32) Option {
	return func(s *Searcher) error {
		s.minSimilarity = min
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(index storage.VectorIndex, embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		index:         index,
		embedder:      embedder,
		minSimilarity: defaultMinSimilarity,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "searcher")
	return s, nil
}

// Search returns up to k chunks relevant to query, best first.
func (s *Searcher) Search(ctx context.Context, query string, k int) ([]*Result, error) {
	return s.SearchWithMonitor(ctx, query, k, nil)
}

// SearchWithMonitor is Search with callbacks at each stage.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, k int, monitor SearchMonitor) ([]*Result, error) {
	if monitor == nil {
		monitor = noopMonitor{}
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if k < 1 {
		return []*Result{}, nil
	}

	monitor.Start(query)

	vector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "err", err)
		return nil, err
	}
	return s.rank(ctx, query, vector, k, monitor)
}

// SearchMany runs several queries with one batched embedding call and
// returns one result list per query, in query order.
func (s *Searcher) SearchMany(ctx context.Context, queries []string, k int) ([][]*Result, error) {
	for _, q := range queries {
		if strings.TrimSpace(q) == "" {
			return nil, ErrEmptyQuery
		}
	}
	all := make([][]*Result, len(queries))
	if len(queries) == 0 || k < 1 {
		for i := range all {
			all[i] = []*Result{}
		}
		return all, nil
	}

	vectors, err := s.embedder.EmbedTexts(ctx, queries)
	if err != nil {
		s.logger.Error("error generating embeddings for queries", "count", len(queries), "err", err)
		return nil, err
	}
	if len(vectors) != len(queries) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d queries", ErrEmbeddingMismatch, len(vectors), len(queries))
	}

	for i, q := range queries {
		all[i], err = s.rank(ctx, q, vectors[i], k, noopMonitor{})
		if err != nil {
			return nil, err
		}
	}
	return all, nil
}

func (s *Searcher) rank(ctx context.Context, query string, vector []float32, k int, monitor SearchMonitor) ([]*Result, error) {
	matches, err := s.index.FindSimilar(ctx, vector, s.minSimilarity, k*candidateFactor)
	if err != nil {
		s.logger.Error("error querying for similar chunks", "err", err)
		return nil, err
	}
	monitor.AfterSemanticSearch(matches)

	terms := significantWords(query)
	results := make([]*Result, 0, len(matches))
	for _, m := range matches {
		r := &Result{Record: m.Record, Similarity: m.Score, Score: m.Score}
		if containsAll(m.Record.Text, terms) {
			r.Score += verbatimBoost
			monitor.VerbatimHit(m.Record)
		}
		results = append(results, r)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}

	s.logger.Debug("search complete", "candidates", len(matches), "results", len(results))
	monitor.Finish(results)
	return results, nil
}
