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


package frontdoor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/poiesic/docindex/core"
	"github.com/poiesic/docindex/events"
	"github.com/poiesic/docindex/storage"
)

const (
	// DefaultFrameSize is the size of each DownloadDocument frame.
	DefaultFrameSize = 1 << 20

	// UploadMessage is returned with every successful upload.
	UploadMessage = "Document uploaded successfully"
)

// Service accepts uploads, serves stored documents, and announces new
// documents to ingestion workers.
type Service struct {
	raw       storage.RawStore
	publisher events.Publisher
	frameSize int
	newID     func() string
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service) error

// WithFrameSize sets the DownloadDocument frame size in bytes.
func WithFrameSize(size int) Option {
	return func(s *Service) error {
		if size < 1 {
			return ErrInvalidFrameSize
		}
		s.frameSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger != nil {
			s.logger = logger
		}
		return nil
	}
}

// WithIDGenerator replaces uuid.NewString for document IDs.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) error {
		if fn != nil {
			s.newID = fn
		}
		return nil
	}
}

// NewService creates a front door service.
func NewService(raw storage.RawStore, publisher events.Publisher, opts ...Option) (*Service, error) {
	if raw == nil {
		return nil, ErrRawStoreRequired
	}
	if publisher == nil {
		return nil, ErrPublisherRequired
	}
	s := &Service{
		raw:       raw,
		publisher: publisher,
		frameSize: DefaultFrameSize,
		newID:     uuid.NewString,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "frontdoor")
	return s, nil
}

// FrameSize returns the configured download frame size.
func (s *Service) FrameSize() int {
	return s.frameSize
}

// UploadDocument stores content under a fresh document ID and publishes a
// DocumentEvent for it. Any failure is returned as ErrInternal with no ID.
func (s *Service) UploadDocument(ctx context.Context, filename string, content []byte) (string, string, error) {
	id := s.newID()
	logger := s.logger.With("document_id", id)

	if err := s.raw.Put(ctx, id, content); err != nil {
		logger.Error("failed to store document", "filename", filename, "err", err)
		return "", "", fmt.Errorf("%w: store document: %w", ErrInternal, err)
	}

	event := &core.DocumentEvent{
		DocumentID:  id,
		Filename:    filename,
		ContentType: core.ContentTypeFromFilename(filename),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		// The bytes stay stored; a reindex republishes them.
		logger.Error("failed to publish document event", "filename", filename, "err", err)
		return "", "", fmt.Errorf("%w: publish event: %w", ErrInternal, err)
	}

	logger.Info("document uploaded", "filename", filename, "size", len(content), "content_type", event.ContentType)
	return id, UploadMessage, nil
}

// GetDocument returns the stored bytes of a document. The flat store keeps no
// filenames, so the returned filename is the document ID.
func (s *Service) GetDocument(ctx context.Context, id string) (string, []byte, error) {
	data, err := s.raw.Get(ctx, id)
	if err != nil {
		return "", nil, s.translate(id, err)
	}
	return id, data, nil
}

// DownloadDocument streams a document to send in frames of FrameSize bytes;
// the last frame may be shorter and an empty document produces no frames.
// ErrNotFound is returned before any frame is sent. A read failure after
// frames were sent returns ErrInternal. An error from send stops the stream
// and is returned as is.
//
// The frame slice is reused between calls; send must not retain it.
func (s *Service) DownloadDocument(ctx context.Context, id string, send func(frame []byte) error) error {
	r, err := s.raw.Open(ctx, id)
	if err != nil {
		return s.translate(id, err)
	}
	defer r.Close()

	buf := make([]byte, s.frameSize)
	frames := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, readErr := io.ReadFull(r, buf)
		if readErr != nil && !errors.Is(readErr, io.EOF) && !errors.Is(readErr, io.ErrUnexpectedEOF) {
			s.logger.Error("download read failed", "document_id", id, "frames", frames, "err", readErr)
			return fmt.Errorf("%w: read document: %w", ErrInternal, readErr)
		}
		if n > 0 {
			if err := send(buf[:n]); err != nil {
				return err
			}
			frames++
		}
		if readErr != nil {
			s.logger.Debug("download complete", "document_id", id, "frames", frames)
			return nil
		}
	}
}

func (s *Service) translate(id string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	case errors.Is(err, storage.ErrInvalidID):
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	default:
		s.logger.Error("failed to read document", "document_id", id, "err", err)
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}
}
