package reindex

import "errors"

var (
	// ErrRawStoreRequired is returned when a raw store is not provided.
	ErrRawStoreRequired = errors.New("raw store required")

	// ErrPublisherRequired is returned when an event publisher is not provided.
	ErrPublisherRequired = errors.New("event publisher required")
)
