package ai

import "errors"

var (
	// ErrEmptyEmbedding indicates the embedding service returned no vector.
	ErrEmptyEmbedding = errors.New("embedding service returned no vector")

	// ErrUnparseableResponse indicates a model response could not be parsed as a JSON object.
	ErrUnparseableResponse = errors.New("unparseable model response")
)
