package search

import "github.com/poiesic/docindex/core"

// SearchMonitor provides hooks to observe the search process.
type SearchMonitor interface {
	Start(query string)
	AfterSemanticSearch(matches []*core.SimilarityMatch)
	VerbatimHit(record *core.ChunkRecord)
	Finish(results []*Result)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (noopMonitor) Start(string)                                {}
func (noopMonitor) AfterSemanticSearch([]*core.SimilarityMatch) {}
func (noopMonitor) VerbatimHit(*core.ChunkRecord)               {}
func (noopMonitor) Finish([]*Result)                            {}
