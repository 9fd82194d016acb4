package badger

import (
	"fmt"

	"github.com/poiesic/docindex/core"
)

// Key prefixes for different data types
const (
	chunkRecordPrefix   = "chkrec"
	chunkDocumentPrefix = "chkdoc"
	ingestStatusPrefix  = "ingsts"
)

// makeChunkRecordKey generates a key for a chunk record.
// Format: prefix:hash:chunkID, where hash is 16 hex digits. The chunk ID
// suffix keeps keys unique when two IDs share a hash.
func makeChunkRecordKey(chunkID string) []byte {
	return []byte(fmt.Sprintf("%s:%016x:%s", chunkRecordPrefix, uint64(core.IDFromContent(chunkID)), chunkID))
}

// makeChunkDocumentKey generates a composite key for the per-document index.
// Format: prefix:documentID:chunkID
func makeChunkDocumentKey(documentID, chunkID string) []byte {
	return []byte(chunkDocumentPrefix + ":" + documentID + ":" + chunkID)
}

// makePartialChunkDocumentKey generates the prefix shared by all chunks of a document.
// Format: prefix:documentID:
func makePartialChunkDocumentKey(documentID string) []byte {
	return []byte(chunkDocumentPrefix + ":" + documentID + ":")
}

// makeIngestStatusKey generates a key for a document's ingestion status.
func makeIngestStatusKey(documentID string) []byte {
	return []byte(ingestStatusPrefix + ":" + documentID)
}
