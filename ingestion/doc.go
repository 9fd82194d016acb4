// Package ingestion consumes document-uploaded events and writes chunk
// records to a vector index.
//
// For each event the Worker reads the raw bytes, extracts text, splits it
// into overlapping chunks, and for every chunk runs metadata extraction and
// embedding side by side before upserting a ChunkRecord keyed by the
// deterministic chunk ID. Reprocessing an event overwrites the same records.
//
// Failures never escape ProcessEvent:
//
//   - missing raw bytes, failed extraction, or blank text skip the event
//   - a failed embedding skips only that chunk
//   - failed metadata extraction falls back to the base fields
//
// Usage:
//
//	worker, err := ingestion.NewWorker(consumer, raw, extractor, provider, index,
//	    ingestion.WithRateLimit(5, 2),
//	    ingestion.WithStatusRepository(statusRepo))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer worker.Release()
//	err = worker.Run(ctx)
package ingestion
