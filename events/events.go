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


// Package events carries document-uploaded notifications from the front door
// to ingestion workers.
//
// Delivery is at-least-once: a consumer sees a message again until it is
// committed. Implementations live in events/kafka and events/memory.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/poiesic/docindex/core"
)

// Publisher sends document events.
type Publisher interface {
	// Publish sends the event keyed by its document ID and waits for the
	// broker to acknowledge it.
	Publish(ctx context.Context, event *core.DocumentEvent) error
	Close() error
}

// Consumer receives raw event messages.
type Consumer interface {
	// Fetch blocks until a message is available or ctx is done.
	Fetch(ctx context.Context) (Delivery, error)
	Close() error
}

// Delivery is one fetched message.
type Delivery interface {
	Key() []byte
	Value() []byte
	// Commit acknowledges the message so it is not delivered again.
	Commit(ctx context.Context) error
}

// Encode serializes an event as JSON.
func Encode(event *core.DocumentEvent) ([]byte, error) {
	if event == nil {
		return nil, core.ErrInvalidEvent
	}
	return json.Marshal(event)
}

// Decode parses and validates a JSON event.
func Decode(data []byte) (*core.DocumentEvent, error) {
	var event core.DocumentEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}
	if err := core.ValidateEvent(&event); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}
	return &event, nil
}
