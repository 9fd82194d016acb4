package badger

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// Backend owns the BadgerDB handle shared by the chunk index and the
// status repository.
type Backend struct {
	db     *badger.DB
	path   string
	logger *slog.Logger
}

// BackendOption configures OpenBackend.
type BackendOption func(*badger.Options)

// WithSyncWrites fsyncs every commit. Off by default; a lost write is
// repaired by redelivery of the document event.
func WithSyncWrites(sync bool) BackendOption {
	return func(o *badger.Options) {
		o.SyncWrites = sync
	}
}

// WithValueLogFileSize caps each value log file, in bytes.
func WithValueLogFileSize(size int64) BackendOption {
	return func(o *badger.Options) {
		if size > 0 {
			o.ValueLogFileSize = size
		}
	}
}

// slogAdapter routes badger's printf-style logging to slog.
type slogAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*slogAdapter)(nil)

func (a *slogAdapter) Errorf(msg string, items ...any)   { a.logger.Error(line(msg, items)) }
func (a *slogAdapter) Warningf(msg string, items ...any) { a.logger.Warn(line(msg, items)) }
func (a *slogAdapter) Infof(msg string, items ...any)    { a.logger.Debug(line(msg, items)) }
func (a *slogAdapter) Debugf(msg string, items ...any)   { a.logger.Debug(line(msg, items)) }

// badger terminates its messages with a newline.
func line(msg string, items []any) string {
	return strings.TrimRight(fmt.Sprintf(msg, items...), "\n")
}

// OpenBackend opens the store at path, creating the directory if needed.
// When inMemory is true the path is ignored and nothing touches disk.
func OpenBackend(path string, inMemory bool, opts ...BackendOption) (*Backend, error) {
	var bopts badger.Options
	if inMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
		path = ""
	} else {
		if err := os.MkdirAll(path, 0755); err != nil {
			return nil, err
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", path)
		}
		bopts = badger.DefaultOptions(path)
	}

	logger := slog.Default().With("component", "badger")
	bopts.Logger = &slogAdapter{logger: logger}
	// Vectors are float noise and don't compress.
	bopts.Compression = options.None
	for _, opt := range opts {
		opt(&bopts)
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("opening badger at %q: %w", path, err)
	}
	return &Backend{db: db, path: path, logger: logger}, nil
}

// Path returns the directory the store lives in, or "" when in memory.
func (b *Backend) Path() string {
	return b.path
}

// Close closes the database. Closing twice is a no-op.
func (b *Backend) Close() error {
	if b.db.IsClosed() {
		return nil
	}
	return b.db.Close()
}

// IsClosed reports whether Close has been called.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// View runs fn in a read-only transaction.
func (b *Backend) View(fn func(tx *badger.Txn) error) error {
	return b.db.View(fn)
}

// Update runs fn in a read-write transaction and commits it.
func (b *Backend) Update(fn func(tx *badger.Txn) error) error {
	return b.db.Update(fn)
}
