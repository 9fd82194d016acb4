package memory

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/docindex/core"
	"github.com/poiesic/docindex/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannel_PublishFetchCommit(t *testing.T) {
	ctx := context.Background()
	ch := New()

	require.NoError(t, ch.Publish(ctx, &core.DocumentEvent{DocumentID: "d1", ContentType: core.ContentTypeText}))
	require.NoError(t, ch.Publish(ctx, &core.DocumentEvent{DocumentID: "d2", ContentType: core.ContentTypePDF}))

	d, err := ch.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("d1"), d.Key())
	event, err := events.Decode(d.Value())
	require.NoError(t, err)
	assert.Equal(t, "d1", event.DocumentID)

	require.NoError(t, d.Commit(ctx))
	assert.Equal(t, 1, ch.Committed())

	d2, err := ch.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("d2"), d2.Key())

	// d2 not committed: a restart sees it again
	ch.Redeliver()
	again, err := ch.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("d2"), again.Key())
}

func TestChannel_FetchBlocksUntilPublish(t *testing.T) {
	ch := New()
	got := make(chan events.Delivery, 1)
	go func() {
		d, err := ch.Fetch(context.Background())
		if err == nil {
			got <- d
		}
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, ch.Publish(context.Background(), &core.DocumentEvent{DocumentID: "late", ContentType: core.ContentTypeText}))

	select {
	case d := <-got:
		assert.Equal(t, []byte("late"), d.Key())
	case <-time.After(2 * time.Second):
		t.Fatal("fetch did not wake up")
	}
}

func TestChannel_FetchHonorsContext(t *testing.T) {
	ch := New()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := ch.Fetch(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestChannel_Close(t *testing.T) {
	ch := New()
	require.NoError(t, ch.Close())

	_, err := ch.Fetch(context.Background())
	assert.ErrorIs(t, err, events.ErrClosed)
	assert.ErrorIs(t, ch.PublishRaw(context.Background(), nil, nil), events.ErrClosed)
}
