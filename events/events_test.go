package events

import (
	"testing"

	"github.com/poiesic/docindex/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeWireFormat(t *testing.T) {
	data, err := Encode(&core.DocumentEvent{DocumentID: "d1", Filename: "a.pdf", ContentType: core.ContentTypePDF})
	require.NoError(t, err)
	assert.JSONEq(t, `{"document_id":"d1","filename":"a.pdf","content_type":"pdf"}`, string(data))

	_, err = Encode(nil)
	assert.ErrorIs(t, err, core.ErrInvalidEvent)
}

func TestDecode(t *testing.T) {
	event, err := Decode([]byte(`{"document_id":"d1","filename":"notes.txt","content_type":"text"}`))
	require.NoError(t, err)
	assert.Equal(t, "d1", event.DocumentID)
	assert.Equal(t, "notes.txt", event.Filename)
	assert.Equal(t, core.ContentTypeText, event.ContentType)

	event, err = Decode([]byte(`{"document_id":"d2","filename":"notes.md","content_type":"markdown"}`))
	require.NoError(t, err)
	assert.Equal(t, core.ContentType("markdown"), event.ContentType)

	tests := []struct {
		name string
		data string
	}{
		{"not json", `hello`},
		{"missing id", `{"filename":"a","content_type":"text"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			assert.ErrorIs(t, err, ErrMalformedEvent)
		})
	}
}
