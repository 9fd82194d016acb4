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


package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docindex/core"
	"github.com/poiesic/docindex/storage"
)

// StatusRepository implements storage.StatusRepository for BadgerDB.
type StatusRepository struct {
	backend *Backend
}

var _ storage.StatusRepository = (*StatusRepository)(nil)

// NewStatusRepository creates a new StatusRepository.
func NewStatusRepository(backend *Backend) *StatusRepository {
	return &StatusRepository{
		backend: backend,
	}
}

// SaveStatus persists the ingestion status for a document.
func (r *StatusRepository) SaveStatus(ctx context.Context, status *core.IngestStatus) error {
	status.UpdatedAt = time.Now().UTC()
	value := storage.MarshalIngestStatus(status)
	return r.backend.Update(func(tx *badger.Txn) error {
		return tx.Set(makeIngestStatusKey(status.DocumentID), value)
	})
}

// LoadStatus retrieves the ingestion status for a document.
// Returns nil, nil if no status exists.
func (r *StatusRepository) LoadStatus(ctx context.Context, documentID string) (*core.IngestStatus, error) {
	var status *core.IngestStatus
	err := r.backend.View(func(tx *badger.Txn) error {
		item, err := tx.Get(makeIngestStatusKey(documentID))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			status, unmarshalErr = storage.UnmarshalIngestStatus(val)
			return unmarshalErr
		})
	})

	return status, err
}
