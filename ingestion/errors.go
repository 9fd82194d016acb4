package ingestion

import "errors"

var (
	// ErrConsumerRequired is returned when an event consumer is not provided.
	ErrConsumerRequired = errors.New("event consumer required")

	// ErrRawStoreRequired is returned when a raw document store is not provided.
	ErrRawStoreRequired = errors.New("raw store required")

	// ErrExtractorRequired is returned when a text extractor is not provided.
	ErrExtractorRequired = errors.New("text extractor required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrIndexRequired is returned when a vector index is not provided.
	ErrIndexRequired = errors.New("vector index required")

	// ErrInvalidMaxAttempts is returned when a retry is configured with fewer than one attempt.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than 0")
)
