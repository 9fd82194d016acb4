// Package search answers natural-language queries against the chunk index.
//
// A query is embedded with the same model used at ingestion, the index
// returns the nearest chunks by cosine similarity, and chunks containing
// every significant query word are ranked higher.
//
//	searcher, err := search.NewSearcher(index, provider.Embedder())
//	results, err := searcher.Search(ctx, "quarterly revenue in europe", 5)
//	for _, r := range results {
//	    fmt.Println(r.Record.ChunkID, r.Score)
//	}
package search
