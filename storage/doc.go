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


// Package storage provides the storage abstraction layer for docindex.
//
// Two kinds of storage sit behind the interfaces in this package:
//
//   - RawStore: uploaded document bytes, addressed by document ID
//   - VectorIndex: embedded chunk records, addressed by chunk ID
//
// StatusRepository records per-document ingestion outcomes.
//
// # Backends
//
//   - storage/disk: RawStore on a local directory (one file per document)
//   - storage/s3: RawStore on an S3 bucket (one object per document)
//   - storage/badger: VectorIndex and StatusRepository on BadgerDB
//   - storage/pgvector: VectorIndex on PostgreSQL with the pgvector extension
//
// # Usage
//
//	raw, err := disk.NewStore("./documents")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	backend, err := badger.OpenBackend("./vector_index", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//	index := badger.NewChunkIndex(backend)
//
// Use in tests with in-memory storage:
//
//	index, backend, err := badger.NewMemoryIndex()
//
// # Thread Safety
//
// All implementations must be thread-safe and support concurrent access
// from multiple goroutines.
package storage
