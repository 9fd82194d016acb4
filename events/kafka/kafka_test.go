package kafka

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/poiesic/docindex/core"
	"github.com/poiesic/docindex/events"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	written []kafkago.Message
	err     error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type fakeReader struct {
	queue     []kafkago.Message
	committed []kafkago.Message
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	if r.closed {
		return kafkago.Message{}, io.EOF
	}
	if len(r.queue) == 0 {
		<-ctx.Done()
		return kafkago.Message{}, errors.New("fetch aborted")
	}
	m := r.queue[0]
	r.queue = r.queue[1:]
	return m, nil
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafkago.Message) error {
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, Config{Brokers: []string{"localhost:9092"}, Topic: "t"}.Validate())
	assert.Error(t, Config{Topic: "t"}.Validate())
	assert.Error(t, Config{Brokers: []string{"b"}}.Validate())
	assert.Error(t, Config{Brokers: []string{"b"}, Topic: "t", OffsetReset: "middle"}.Validate())

	assert.Equal(t, kafkago.FirstOffset, Config{OffsetReset: OffsetEarliest}.startOffset())
	assert.Equal(t, kafkago.LastOffset, Config{OffsetReset: OffsetLatest}.startOffset())
}

func TestPublisher_KeysByDocumentID(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisher(w, nil)

	err := p.Publish(context.Background(), &core.DocumentEvent{DocumentID: "abc", Filename: "x.pdf", ContentType: core.ContentTypePDF})
	require.NoError(t, err)
	require.Len(t, w.written, 1)
	assert.Equal(t, []byte("abc"), w.written[0].Key)

	event, err := events.Decode(w.written[0].Value)
	require.NoError(t, err)
	assert.Equal(t, "x.pdf", event.Filename)
}

func TestPublisher_WriteError(t *testing.T) {
	boom := errors.New("leader not available")
	p := newPublisher(&fakeWriter{err: boom}, nil)

	err := p.Publish(context.Background(), &core.DocumentEvent{DocumentID: "abc", ContentType: core.ContentTypeText})
	assert.ErrorIs(t, err, boom)
}

func TestConsumer_FetchAndCommit(t *testing.T) {
	r := &fakeReader{queue: []kafkago.Message{{Key: []byte("k"), Value: []byte("v"), Offset: 7}}}
	c := newConsumer(r, nil)

	d, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("k"), d.Key())
	assert.Equal(t, []byte("v"), d.Value())

	require.NoError(t, d.Commit(context.Background()))
	require.Len(t, r.committed, 1)
	assert.Equal(t, int64(7), r.committed[0].Offset)
}

func TestConsumer_FetchCancelled(t *testing.T) {
	c := newConsumer(&fakeReader{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConsumer_FetchAfterClose(t *testing.T) {
	r := &fakeReader{queue: []kafkago.Message{{Value: []byte("v")}}}
	c := newConsumer(r, nil)
	require.NoError(t, c.Close())

	_, err := c.Fetch(context.Background())
	assert.ErrorIs(t, err, events.ErrClosed)
	assert.ErrorIs(t, err, io.EOF)
}
