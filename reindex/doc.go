// Package reindex republishes an ingestion event for every document already
// held in the raw store.
//
// It is used after changing the embedding model, the chunking parameters or
// the vector backend. Chunk IDs are derived from the document ID and chunk
// index, so replaying a document overwrites its previous records.
package reindex
