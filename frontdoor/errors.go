package frontdoor

import "errors"

var (
	// ErrNotFound indicates the requested document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrInvalidArgument indicates a malformed request, such as an unusable document ID.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInternal indicates a storage or publish failure. No partial result is returned.
	ErrInternal = errors.New("internal error")

	// ErrRawStoreRequired is returned when a raw store is not provided.
	ErrRawStoreRequired = errors.New("raw store required")

	// ErrPublisherRequired is returned when an event publisher is not provided.
	ErrPublisherRequired = errors.New("event publisher required")

	// ErrInvalidFrameSize is returned for a non-positive download frame size.
	ErrInvalidFrameSize = errors.New("frame size must be greater than 0")
)
