package core

import (
	"errors"
	"testing"
)

func TestValidateEvent(t *testing.T) {
	tests := []struct {
		name    string
		event   *DocumentEvent
		wantErr error
	}{
		{
			name:    "valid text event",
			event:   &DocumentEvent{DocumentID: "d1", Filename: "a.txt", ContentType: ContentTypeText},
			wantErr: nil,
		},
		{
			name:    "valid pdf event without filename",
			event:   &DocumentEvent{DocumentID: "d1", ContentType: ContentTypePDF},
			wantErr: nil,
		},
		{
			name:    "nil event",
			event:   nil,
			wantErr: ErrInvalidEvent,
		},
		{
			name:    "empty document id",
			event:   &DocumentEvent{ContentType: ContentTypeText},
			wantErr: ErrEmptyDocumentID,
		},
		{
			name:    "unrecognized content type is read as text",
			event:   &DocumentEvent{DocumentID: "d1", ContentType: "markdown"},
			wantErr: nil,
		},
		{
			name:    "missing content type",
			event:   &DocumentEvent{DocumentID: "d1"},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEvent(tt.event)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateEvent() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateEvent() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidEvent) {
				t.Errorf("ValidateEvent() error should wrap ErrInvalidEvent, got %v", err)
			}
		})
	}
}

func TestValidateChunkRecord(t *testing.T) {
	tests := []struct {
		name    string
		record  *ChunkRecord
		wantErr error
	}{
		{
			name:    "valid record",
			record:  &ChunkRecord{ChunkID: "d1_chunk_0", Text: "hello", Vector: []float32{0.1}},
			wantErr: nil,
		},
		{
			name:    "nil record",
			record:  nil,
			wantErr: ErrInvalidChunkRecord,
		},
		{
			name:    "empty chunk id",
			record:  &ChunkRecord{Text: "hello", Vector: []float32{0.1}},
			wantErr: ErrEmptyChunkID,
		},
		{
			name:    "empty text",
			record:  &ChunkRecord{ChunkID: "d1_chunk_0", Vector: []float32{0.1}},
			wantErr: ErrEmptyContent,
		},
		{
			name:    "empty vector",
			record:  &ChunkRecord{ChunkID: "d1_chunk_0", Text: "hello"},
			wantErr: ErrEmptyVector,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChunkRecord(tt.record)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateChunkRecord() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateChunkRecord() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
