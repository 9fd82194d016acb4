// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/poiesic/docindex/ai"
	"github.com/poiesic/docindex/core"
	"github.com/poiesic/docindex/storage"
)

// Outcome summarizes one call to ProcessEvent.
type Outcome struct {
	State   core.IngestState
	Chunks  int // chunks produced by the splitter
	Indexed int // chunk records written
	Skipped int // chunks dropped
}

// ProcessEvent drives one event through extraction, splitting, enrichment and
// indexing. Failures are logged and absorbed; the returned Outcome says how
// far the event got.
func (w *Worker) ProcessEvent(ctx context.Context, event *core.DocumentEvent) Outcome {
	if err := core.ValidateEvent(event); err != nil {
		w.logger.Warn("rejecting invalid event", "err", err)
		return Outcome{State: core.IngestStateRejected}
	}

	logger := w.logger.With("document_id", event.DocumentID)
	out := w.process(ctx, event)

	// An interrupted pass is redelivered, so it leaves no status behind.
	if ctx.Err() != nil {
		logger.Info("ingestion interrupted", "state", out.State, "indexed", out.Indexed)
		return out
	}

	switch out.State {
	case core.IngestStateDone:
		logger.Info("document indexed", "chunks", out.Chunks, "indexed", out.Indexed, "skipped", out.Skipped)
	default:
		logger.Warn("document not indexed", "state", out.State)
	}

	w.saveStatus(ctx, event.DocumentID, out)
	return out
}

func (w *Worker) process(ctx context.Context, event *core.DocumentEvent) Outcome {
	logger := w.logger.With("document_id", event.DocumentID)

	data, err := w.raw.Get(ctx, event.DocumentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			logger.Warn("raw document not found")
			return Outcome{State: core.IngestStateSkippedMissing}
		}
		logger.Error("failed to read raw document", "err", err)
		return Outcome{State: core.IngestStateFetchFailed}
	}

	text, err := w.extractor.Extract(ctx, data, event.ContentType)
	if err != nil {
		logger.Error("text extraction failed", "content_type", event.ContentType, "err", err)
		return Outcome{State: core.IngestStateExtractionFailed}
	}
	if strings.TrimSpace(text) == "" {
		logger.Info("extracted text is empty")
		return Outcome{State: core.IngestStateSkippedEmpty}
	}

	chunks := w.splitter.Chunks(event.DocumentID, text)
	out := Outcome{State: core.IngestStateDone, Chunks: len(chunks)}
	logger.Debug("split document", "chunks", len(chunks), "length", len(text))

	// Chunks are handled strictly in index order.
	for _, chunk := range chunks {
		if err := w.processChunk(ctx, event, chunk); err != nil {
			out.Skipped++
			logger.Warn("skipping chunk", "chunk_index", chunk.Index, "err", err)
			continue
		}
		out.Indexed++
		logger.Debug("indexed chunk", "chunk_index", chunk.Index)
	}
	return out
}

type metadataResult struct {
	metadata map[string]string
	err      error
}

// processChunk enriches and indexes one chunk. A returned error means no
// record was written for it.
func (w *Worker) processChunk(ctx context.Context, event *core.DocumentEvent, chunk core.Chunk) error {
	var wg sync.WaitGroup
	var md metadataResult

	wg.Add(1)
	task := func() {
		defer wg.Done()
		md.metadata, md.err = w.extractMetadata(ctx, chunk.Text)
	}
	if err := w.pool.Submit(task); err != nil {
		task()
	}

	vector, embedErr := w.embed(ctx, chunk.Text)
	wg.Wait()

	if embedErr != nil {
		return fmt.Errorf("embedding: %w", embedErr)
	}

	base := core.BaseMetadata(*event, chunk.Index)
	metadata := base
	if md.err != nil {
		w.logger.Warn("metadata extraction failed, using base metadata",
			"document_id", event.DocumentID, "chunk_index", chunk.Index, "err", md.err)
	} else {
		metadata = core.MergeMetadata(base, md.metadata)
	}

	record := &core.ChunkRecord{
		ChunkID:    chunk.ID(),
		DocumentID: event.DocumentID,
		Index:      chunk.Index,
		Text:       chunk.Text,
		Vector:     vector,
		Metadata:   metadata,
	}

	err := RetryWithBackoff(ctx, func() error {
		err := w.index.Upsert(ctx, record)
		if errors.Is(err, core.ErrInvalidChunkRecord) || errors.Is(err, storage.ErrStorageClosed) {
			return Permanent(err)
		}
		return err
	}, w.upsertRetries, w.upsertDelay)
	if err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}

func (w *Worker) extractMetadata(ctx context.Context, text string) (map[string]string, error) {
	if err := w.wait(ctx); err != nil {
		return nil, err
	}
	return w.metadata.ExtractMetadata(ctx, text)
}

func (w *Worker) embed(ctx context.Context, text string) ([]float32, error) {
	if err := w.wait(ctx); err != nil {
		return nil, err
	}
	vector, err := w.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vector) == 0 {
		return nil, ai.ErrEmptyEmbedding
	}
	return vector, nil
}

func (w *Worker) wait(ctx context.Context) error {
	if w.limiter == nil {
		return nil
	}
	return w.limiter.Wait(ctx)
}

func (w *Worker) saveStatus(ctx context.Context, documentID string, out Outcome) {
	if w.status == nil {
		return
	}
	status := &core.IngestStatus{
		DocumentID: documentID,
		State:      out.State,
		Chunks:     out.Chunks,
		Indexed:    out.Indexed,
		Skipped:    out.Skipped,
	}
	if err := w.status.SaveStatus(context.WithoutCancel(ctx), status); err != nil {
		w.logger.Error("failed to save ingest status", "document_id", documentID, "err", err)
	}
}
