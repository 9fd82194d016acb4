package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"strconv"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a fixed-width storage key derived from a string identifier.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// Identical content always produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ContentType tells the ingestion worker how to turn raw bytes into text.
type ContentType string

const (
	// ContentTypePDF routes raw bytes through the PDF text extractor.
	ContentTypePDF ContentType = "pdf"
	// ContentTypeText treats raw bytes as UTF-8 text.
	ContentTypeText ContentType = "text"
)

// ContentTypeFromFilename classifies an uploaded file by its suffix.
func ContentTypeFromFilename(filename string) ContentType {
	if strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return ContentTypePDF
	}
	return ContentTypeText
}

// DocumentEvent announces that a raw document has been stored and is ready
// for ingestion. It is the only message carried on the event channel.
type DocumentEvent struct {
	DocumentID  string      `json:"document_id"`
	Filename    string      `json:"filename"`
	ContentType ContentType `json:"content_type"`
}

// Chunk is a transient slice of a document's extracted text.
type Chunk struct {
	DocumentID string
	Index      int
	Text       string
}

// ID returns the chunk's deterministic identifier.
func (c Chunk) ID() string {
	return ChunkID(c.DocumentID, c.Index)
}

// ChunkID builds the identifier used as the vector index upsert key.
// Re-ingesting a document with the same split parameters yields the same IDs.
func ChunkID(documentID string, index int) string {
	return documentID + "_chunk_" + strconv.Itoa(index)
}

// ChunkRecord is the unit stored in a vector index.
type ChunkRecord struct {
	ChunkID    string
	DocumentID string
	Index      int
	Text       string
	Vector     []float32
	Metadata   map[string]string
	IndexedAt  time.Time
}

// Base metadata keys attached to every chunk record.
const (
	MetaFilename    = "filename"
	MetaContentType = "content_type"
	MetaChunkIndex  = "chunk_index"
	MetaDocumentID  = "document_id"
)

// BaseMetadata returns the fields every chunk record carries regardless of
// what the metadata extractor produces.
func BaseMetadata(event DocumentEvent, index int) map[string]string {
	return map[string]string{
		MetaFilename:    event.Filename,
		MetaContentType: string(event.ContentType),
		MetaChunkIndex:  strconv.Itoa(index),
		MetaDocumentID:  event.DocumentID,
	}
}

// MergeMetadata overlays extracted onto base and returns a new map.
// Extracted values replace base values that share a key. Neither input is modified.
func MergeMetadata(base, extracted map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(extracted))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extracted {
		merged[k] = v
	}
	return merged
}

// IngestState is the terminal state of one document's pass through the worker.
type IngestState string

const (
	IngestStateRejected         IngestState = "rejected"
	IngestStateSkippedMissing   IngestState = "skipped_missing"
	IngestStateFetchFailed      IngestState = "fetch_failed"
	IngestStateSkippedEmpty     IngestState = "skipped_empty"
	IngestStateExtractionFailed IngestState = "extraction_failed"
	IngestStateDone             IngestState = "done"
)

// IngestStatus records what happened the last time a document was ingested.
type IngestStatus struct {
	DocumentID string
	State      IngestState
	Chunks     int // chunks produced by the splitter
	Indexed    int // chunk records written
	Skipped    int // chunks dropped after an embedding or index failure
	UpdatedAt  time.Time
}

// SimilarityMatch is a chunk returned from a vector similarity search.
type SimilarityMatch struct {
	Record *ChunkRecord
	Score  float32
}
