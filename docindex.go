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


// Package docindex assembles the storage, AI and event channel clients
// selected by a config.Config and builds the worker, front door, searcher
// and reindexer on top of them.
package docindex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/poiesic/docindex/ai"
	"github.com/poiesic/docindex/ai/gemini"
	"github.com/poiesic/docindex/ai/openai"
	"github.com/poiesic/docindex/config"
	"github.com/poiesic/docindex/events"
	"github.com/poiesic/docindex/events/kafka"
	"github.com/poiesic/docindex/extract"
	"github.com/poiesic/docindex/frontdoor"
	"github.com/poiesic/docindex/ingestion"
	"github.com/poiesic/docindex/reindex"
	"github.com/poiesic/docindex/search"
	"github.com/poiesic/docindex/splitter"
	"github.com/poiesic/docindex/storage"
	"github.com/poiesic/docindex/storage/badger"
	"github.com/poiesic/docindex/storage/disk"
	"github.com/poiesic/docindex/storage/pgvector"
	"github.com/poiesic/docindex/storage/s3"
)

const upsertRetryDelay = 200 * time.Millisecond

// System owns every long-lived client. Create it with Open and release it
// with Close.
//
// Only the raw store is connected by Open. The badger store, the chunk index
// and the AI provider are opened on first use, so a front door and a worker
// can run as separate processes against the same configuration.
type System struct {
	cfg    *config.Config
	raw    storage.RawStore
	logger *slog.Logger

	mu        sync.Mutex
	backend   *badger.Backend
	index     storage.VectorIndex
	status    storage.StatusRepository
	provider  ai.AIProvider
	publisher events.Publisher
	consumer  events.Consumer
	closers   []io.Closer
	closed    bool
}

// Option configures Open.
type Option func(*System)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *System) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAIProvider uses provider instead of building one from the config.
// The System does not close a provider passed this way.
func WithAIProvider(provider ai.AIProvider) Option {
	return func(s *System) {
		s.provider = provider
	}
}

// WithEventChannel uses publisher and consumer instead of Kafka clients.
// The System does not close them.
func WithEventChannel(publisher events.Publisher, consumer events.Consumer) Option {
	return func(s *System) {
		s.publisher = publisher
		s.consumer = consumer
	}
}

// Open validates cfg and connects the raw document store.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*System, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &System{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "docindex")

	var err error
	switch cfg.RawBackend {
	case config.RawBackendS3:
		s.raw, err = s3.NewStore(ctx, s3.Config{
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	default:
		s.raw, err = disk.NewStore(cfg.StorageRoot)
	}
	if err != nil {
		return nil, fmt.Errorf("opening raw store: %w", err)
	}

	s.logger.Debug("opened",
		"raw_backend", cfg.RawBackend,
		"vector_backend", cfg.VectorBackend,
		"ai_provider", cfg.AIProvider)
	return s, nil
}

func newProvider(ctx context.Context, cfg *ai.Config) (ai.AIProvider, error) {
	switch cfg.Provider {
	case ai.ProviderGemini:
		return gemini.NewProvider(ctx, cfg)
	default:
		return openai.NewProvider(cfg)
	}
}

// Close releases everything the System opened, most recent first.
func (s *System) Close() error {
	s.mu.Lock()
	closers := s.closers
	s.closers = nil
	backend := s.backend
	s.backend = nil
	s.closed = true
	s.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			s.logger.Error("error closing component", "err", err)
			errs = append(errs, err)
		}
	}
	if backend != nil {
		if err := backend.Close(); err != nil {
			s.logger.Error("error closing backend storage", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Config returns the settings the System was opened with.
func (s *System) Config() *config.Config {
	return s.cfg
}

// RawStore returns the raw document store.
func (s *System) RawStore() storage.RawStore {
	return s.raw
}

// openBackend opens the badger store on first use. Callers hold s.mu.
func (s *System) openBackend() (*badger.Backend, error) {
	if s.closed {
		return nil, storage.ErrStorageClosed
	}
	if s.backend != nil {
		return s.backend, nil
	}
	backend, err := badger.OpenBackend(s.cfg.BadgerPath, false)
	if err != nil {
		return nil, fmt.Errorf("opening badger store: %w", err)
	}
	s.logger.Debug("opened badger store", "path", s.cfg.BadgerPath)
	s.backend = backend
	return backend, nil
}

// Index returns the chunk vector index, connecting it on first use. The
// badger backend keeps chunks beside ingestion status; pgvector keeps them
// in Postgres.
func (s *System) Index(ctx context.Context) (storage.VectorIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index != nil {
		return s.index, nil
	}
	if s.closed {
		return nil, storage.ErrStorageClosed
	}

	switch s.cfg.VectorBackend {
	case config.VectorBackendPGVector:
		idx, err := pgvector.Open(ctx, s.cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("opening pgvector index: %w", err)
		}
		s.index = idx
		s.closers = append(s.closers, idx)
	default:
		backend, err := s.openBackend()
		if err != nil {
			return nil, err
		}
		s.index = badger.NewChunkIndex(backend)
	}
	return s.index, nil
}

// StatusRepository returns the ingestion status store, opening the badger
// store on first use.
func (s *System) StatusRepository() (storage.StatusRepository, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != nil {
		return s.status, nil
	}
	backend, err := s.openBackend()
	if err != nil {
		return nil, err
	}
	s.status = badger.NewStatusRepository(backend)
	return s.status, nil
}

// AIProvider returns the embedding and metadata provider, creating it from
// the config on first use unless one was injected.
func (s *System) AIProvider(ctx context.Context) (ai.AIProvider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.provider != nil {
		return s.provider, nil
	}
	if s.closed {
		return nil, storage.ErrStorageClosed
	}
	provider, err := newProvider(ctx, s.cfg.AIConfig())
	if err != nil {
		return nil, fmt.Errorf("creating AI provider: %w", err)
	}
	s.provider = provider
	s.closers = append(s.closers, provider)
	return provider, nil
}

// Publisher returns the event publisher, creating the Kafka writer on first use.
func (s *System) Publisher() (events.Publisher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.publisher != nil {
		return s.publisher, nil
	}
	p, err := kafka.NewPublisher(s.cfg.KafkaConfig(), s.logger)
	if err != nil {
		return nil, err
	}
	s.publisher = p
	s.closers = append(s.closers, p)
	return p, nil
}

// Consumer returns the event consumer, joining the consumer group on first use.
func (s *System) Consumer() (events.Consumer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.consumer != nil {
		return s.consumer, nil
	}
	c, err := kafka.NewConsumer(s.cfg.KafkaConfig(), s.logger)
	if err != nil {
		return nil, err
	}
	s.consumer = c
	s.closers = append(s.closers, c)
	return c, nil
}

// NewWorker builds an ingestion worker from the configured chunking, pool,
// rate limit and retry settings. Extra options are applied last.
// The caller must Release the worker.
func (s *System) NewWorker(ctx context.Context, opts ...ingestion.Option) (*ingestion.Worker, error) {
	index, err := s.Index(ctx)
	if err != nil {
		return nil, err
	}
	status, err := s.StatusRepository()
	if err != nil {
		return nil, err
	}
	provider, err := s.AIProvider(ctx)
	if err != nil {
		return nil, err
	}
	consumer, err := s.Consumer()
	if err != nil {
		return nil, err
	}
	split, err := splitter.New(
		splitter.WithChunkSize(s.cfg.ChunkSize),
		splitter.WithOverlap(s.cfg.ChunkOverlap),
	)
	if err != nil {
		return nil, err
	}

	extractor, err := extract.New(extract.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}

	base := []ingestion.Option{
		ingestion.WithLogger(s.logger),
		ingestion.WithSplitter(split),
		ingestion.WithPoolSize(s.cfg.IngestWorkers),
		ingestion.WithRateLimit(s.cfg.AIRateLimit, s.cfg.AIRateBurst),
		ingestion.WithStatusRepository(status),
		ingestion.WithUpsertRetry(s.cfg.UpsertAttempts, upsertRetryDelay),
		ingestion.WithPollTimeout(time.Duration(s.cfg.PollTimeout)),
	}
	return ingestion.NewWorker(consumer, s.raw, extractor, provider, index,
		append(base, opts...)...)
}

// NewService builds the front door service.
func (s *System) NewService(opts ...frontdoor.Option) (*frontdoor.Service, error) {
	publisher, err := s.Publisher()
	if err != nil {
		return nil, err
	}
	base := []frontdoor.Option{
		frontdoor.WithFrameSize(s.cfg.FrameSize),
		frontdoor.WithLogger(s.logger),
	}
	return frontdoor.NewService(s.raw, publisher, append(base, opts...)...)
}

// NewServer builds the gRPC server around svc.
func (s *System) NewServer(svc *frontdoor.Service) (*frontdoor.Server, error) {
	return frontdoor.NewServer(svc,
		frontdoor.WithWorkers(s.cfg.RPCWorkers),
		frontdoor.WithMaxMessageSize(s.cfg.MaxMessageSize),
		frontdoor.WithServerLogger(s.logger))
}

// NewHTTPHandler builds the HTTP gateway around svc.
func (s *System) NewHTTPHandler(svc *frontdoor.Service) http.Handler {
	return frontdoor.NewHTTPHandler(svc, frontdoor.HTTPOptions{
		MaxUploadSize:  s.cfg.MaxUploadSize,
		AllowedOrigins: s.cfg.AllowedOrigins,
		Logger:         s.logger,
	})
}

// NewSearcher builds a searcher over the chunk index.
func (s *System) NewSearcher(ctx context.Context, opts ...search.Option) (*search.Searcher, error) {
	index, err := s.Index(ctx)
	if err != nil {
		return nil, err
	}
	provider, err := s.AIProvider(ctx)
	if err != nil {
		return nil, err
	}
	base := []search.Option{
		search.WithLogger(s.logger),
		search.WithMinSimilarity(s.cfg.MinSimilarity),
	}
	return search.NewSearcher(index, provider.Embedder(), append(base, opts...)...)
}

// NewReindexer builds a reindexer that republishes stored documents.
func (s *System) NewReindexer(cfg *reindex.Config) (*reindex.Reindexer, error) {
	publisher, err := s.Publisher()
	if err != nil {
		return nil, err
	}
	return reindex.NewReindexer(s.raw, publisher, cfg, s.logger)
}
