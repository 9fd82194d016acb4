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


package reindex

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/poiesic/docindex/core"
	"github.com/poiesic/docindex/events"
	"github.com/poiesic/docindex/ingestion"
	"github.com/poiesic/docindex/storage"
)

var pdfMagic = []byte("%PDF-")

// Config holds configuration for a reindex run.
type Config struct {
	// ReportInterval is how often to log progress, in documents.
	ReportInterval int

	// MaxRetries is the number of publish attempts per document.
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff.
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     time.Second,
	}
}

// Result summarizes a reindex run.
type Result struct {
	Total     int
	Published int
	Failed    []string
}

// Reindexer republishes events for stored documents.
type Reindexer struct {
	raw       storage.RawStore
	publisher events.Publisher
	config    *Config
	logger    *slog.Logger
}

// NewReindexer creates a new reindexer. A nil config uses DefaultConfig.
func NewReindexer(raw storage.RawStore, publisher events.Publisher, config *Config, logger *slog.Logger) (*Reindexer, error) {
	if raw == nil {
		return nil, ErrRawStoreRequired
	}
	if publisher == nil {
		return nil, ErrPublisherRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reindexer{
		raw:       raw,
		publisher: publisher,
		config:    config,
		logger:    logger.With("component", "reindexer"),
	}, nil
}

// Run publishes one event per stored document, in ID order.
// A document that cannot be read or published is recorded in Result.Failed
// and the run continues. Run stops early only when ctx is cancelled.
func (r *Reindexer) Run(ctx context.Context) (*Result, error) {
	ids, err := r.raw.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	sort.Strings(ids)

	result := &Result{Total: len(ids)}
	if len(ids) == 0 {
		r.logger.Info("no documents to reindex")
		return result, nil
	}
	r.logger.Info("starting reindex", "documents", len(ids))

	tracker := NewProgressTracker(r.logger, len(ids), r.config.ReportInterval)
	tracker.Start()

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := r.republish(ctx, id); err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			r.logger.Warn("failed to republish document", "document_id", id, "err", err)
			result.Failed = append(result.Failed, id)
			tracker.Done(true)
			continue
		}
		result.Published++
		tracker.Done(false)
	}

	tracker.Finish()
	return result, nil
}

func (r *Reindexer) republish(ctx context.Context, id string) error {
	contentType, err := r.sniff(ctx, id)
	if err != nil {
		return err
	}
	event := &core.DocumentEvent{
		DocumentID:  id,
		Filename:    id,
		ContentType: contentType,
	}
	return ingestion.RetryWithBackoff(ctx, func() error {
		return r.publisher.Publish(ctx, event)
	}, r.config.MaxRetries, r.config.RetryDelay)
}

// sniff classifies a stored document by its leading bytes, since the raw
// store does not keep filenames.
func (r *Reindexer) sniff(ctx context.Context, id string) (core.ContentType, error) {
	rc, err := r.raw.Open(ctx, id)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	head := make([]byte, len(pdfMagic))
	n, err := io.ReadFull(rc, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	return SniffContentType(head[:n]), nil
}

// SniffContentType returns ContentTypePDF when data starts with the PDF
// magic bytes and ContentTypeText otherwise.
func SniffContentType(data []byte) core.ContentType {
	if bytes.HasPrefix(data, pdfMagic) {
		return core.ContentTypePDF
	}
	return core.ContentTypeText
}
