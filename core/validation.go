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


package core

import (
	"fmt"
)

// ValidateEvent validates a DocumentEvent received from the event channel.
//
// Validation rules:
//   - DocumentID must not be empty
//
// Filename is informational and may be empty. ContentType is not checked
// here: anything other than pdf is extracted as UTF-8 text.
func ValidateEvent(event *DocumentEvent) error {
	if event == nil {
		return fmt.Errorf("%w: event is nil", ErrInvalidEvent)
	}

	if event.DocumentID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, ErrEmptyDocumentID)
	}

	return nil
}

// ValidateChunkRecord validates a ChunkRecord before it is written to an index.
//
// Validation rules:
//   - ChunkID must not be empty
//   - Text must not be empty
//   - Vector must not be empty
func ValidateChunkRecord(record *ChunkRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidChunkRecord)
	}

	if record.ChunkID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunkRecord, ErrEmptyChunkID)
	}

	if record.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunkRecord, ErrEmptyContent)
	}

	if len(record.Vector) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunkRecord, ErrEmptyVector)
	}

	return nil
}
