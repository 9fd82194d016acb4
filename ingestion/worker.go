package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/docindex/ai"
	"github.com/poiesic/docindex/events"
	"github.com/poiesic/docindex/extract"
	"github.com/poiesic/docindex/splitter"
	"github.com/poiesic/docindex/storage"
	"golang.org/x/time/rate"
)

const (
	defaultPoolSize      = 2
	defaultPollTimeout   = time.Second
	defaultFetchBackoff  = time.Second
	defaultUpsertRetries = 3
	defaultUpsertDelay   = 200 * time.Millisecond
)

// Worker consumes document events and indexes the chunks of each document.
// Events are processed one at a time; within an event, a chunk's metadata
// extraction and embedding run concurrently on the worker pool.
type Worker struct {
	consumer  events.Consumer
	raw       storage.RawStore
	extractor extract.Extractor
	embedder  ai.Embedder
	metadata  ai.MetadataExtractor
	index     storage.VectorIndex
	status    storage.StatusRepository
	splitter  *splitter.Splitter
	pool      *ants.Pool
	limiter   *rate.Limiter

	pollTimeout   time.Duration
	fetchBackoff  time.Duration
	upsertRetries int
	upsertDelay   time.Duration

	logger *slog.Logger
}

// Option configures a Worker.
type Option func(*Worker) error

// WithPoolSize sets the size of the pool that runs per-chunk AI calls.
// Sizes below 2 serialize metadata extraction and embedding.
func WithPoolSize(size int) Option {
	return func(w *Worker) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if w.pool != nil {
			w.pool.Release()
		}
		w.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) error {
		if logger == nil {
			logger = slog.Default()
		}
		w.logger = logger
		return nil
	}
}

// WithSplitter replaces the default 512/100 splitter.
func WithSplitter(s *splitter.Splitter) Option {
	return func(w *Worker) error {
		if s != nil {
			w.splitter = s
		}
		return nil
	}
}

// WithRateLimit caps external AI calls at perSecond with the given burst.
// A non-positive perSecond disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(w *Worker) error {
		if perSecond <= 0 {
			w.limiter = nil
			return nil
		}
		if burst < 1 {
			burst = 1
		}
		w.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		return nil
	}
}

// WithStatusRepository records each document's outcome.
func WithStatusRepository(repo storage.StatusRepository) Option {
	return func(w *Worker) error {
		w.status = repo
		return nil
	}
}

// WithUpsertRetry sets how index writes are retried.
func WithUpsertRetry(attempts int, baseDelay time.Duration) Option {
	return func(w *Worker) error {
		if attempts < 1 {
			return ErrInvalidMaxAttempts
		}
		w.upsertRetries = attempts
		w.upsertDelay = baseDelay
		return nil
	}
}

// WithPollTimeout bounds each wait for the next event.
func WithPollTimeout(d time.Duration) Option {
	return func(w *Worker) error {
		if d > 0 {
			w.pollTimeout = d
		}
		return nil
	}
}

// NewWorker creates an ingestion worker.
func NewWorker(
	consumer events.Consumer,
	raw storage.RawStore,
	extractor extract.Extractor,
	provider ai.AIProvider,
	index storage.VectorIndex,
	opts ...Option,
) (*Worker, error) {
	if consumer == nil {
		return nil, ErrConsumerRequired
	}
	if raw == nil {
		return nil, ErrRawStoreRequired
	}
	if extractor == nil {
		return nil, ErrExtractorRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if index == nil {
		return nil, ErrIndexRequired
	}

	split, err := splitter.New()
	if err != nil {
		return nil, err
	}

	pool, err := ants.NewPool(defaultPoolSize)
	if err != nil {
		return nil, err
	}

	w := &Worker{
		consumer:      consumer,
		raw:           raw,
		extractor:     extractor,
		embedder:      provider.Embedder(),
		metadata:      provider.MetadataExtractor(),
		index:         index,
		splitter:      split,
		pool:          pool,
		pollTimeout:   defaultPollTimeout,
		fetchBackoff:  defaultFetchBackoff,
		upsertRetries: defaultUpsertRetries,
		upsertDelay:   defaultUpsertDelay,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(w); optErr != nil {
			w.Release()
			return nil, optErr
		}
	}
	w.logger = w.logger.With("component", "worker")

	return w, nil
}

// Run polls for events until ctx is cancelled. Each message is committed
// after ProcessEvent returns, so a crash mid-document causes redelivery.
// Messages that don't decode are logged and committed.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("worker started",
		"chunk_size", w.splitter.ChunkSize(),
		"overlap", w.splitter.Overlap())

	for {
		if ctx.Err() != nil {
			w.logger.Info("worker stopped")
			return nil
		}

		delivery, err := w.fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				w.logger.Info("worker stopped")
				return nil
			}
			if errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			if errors.Is(err, events.ErrClosed) {
				return err
			}
			w.logger.Error("failed to fetch event", "err", err)
			w.sleep(ctx, w.fetchBackoff)
			continue
		}

		event, err := events.Decode(delivery.Value())
		if err != nil {
			w.logger.Warn("dropping malformed event", "key", string(delivery.Key()), "err", err)
		} else {
			w.ProcessEvent(ctx, event)
			if ctx.Err() != nil {
				// Leave the event uncommitted so it is redelivered.
				w.logger.Info("worker stopped mid-event", "document_id", event.DocumentID)
				return nil
			}
		}

		if err := delivery.Commit(ctx); err != nil {
			w.logger.Error("failed to commit event", "key", string(delivery.Key()), "err", err)
		}
	}
}

func (w *Worker) fetch(ctx context.Context) (events.Delivery, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, w.pollTimeout)
	defer cancel()
	return w.consumer.Fetch(fetchCtx)
}

func (w *Worker) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Release frees the worker pool. The worker should not be used afterwards.
func (w *Worker) Release() {
	if w.pool != nil {
		w.pool.Release()
	}
}
