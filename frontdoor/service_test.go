package frontdoor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/poiesic/docindex/core"
	"github.com/poiesic/docindex/events/memory"
	"github.com/poiesic/docindex/storage"
	"github.com/poiesic/docindex/storage/disk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, *core.DocumentEvent) error {
	return errors.New("broker unreachable")
}

func (failingPublisher) Close() error { return nil }

// brokenStore fails every write and serves readers that break after a few bytes.
type brokenStore struct {
	storage.RawStore
	readable int
}

func (b *brokenStore) Put(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func (b *brokenStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("i/o error")
}

func (b *brokenStore) Open(context.Context, string) (io.ReadCloser, error) {
	r := io.MultiReader(bytes.NewReader(make([]byte, b.readable)), errReader{})
	return io.NopCloser(r), nil
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("device went away") }

func newTestStore(t *testing.T) *disk.Store {
	t.Helper()
	raw, err := disk.NewStore(t.TempDir())
	require.NoError(t, err)
	return raw
}

func newTestService(t *testing.T, opts ...Option) (*Service, *disk.Store, *memory.Channel) {
	t.Helper()
	raw := newTestStore(t)
	ch := memory.New()
	svc, err := NewService(raw, ch, opts...)
	require.NoError(t, err)
	return svc, raw, ch
}

func TestNewService(t *testing.T) {
	raw, err := disk.NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = NewService(nil, memory.New())
	assert.ErrorIs(t, err, ErrRawStoreRequired)
	_, err = NewService(raw, nil)
	assert.ErrorIs(t, err, ErrPublisherRequired)
	_, err = NewService(raw, memory.New(), WithFrameSize(0))
	assert.ErrorIs(t, err, ErrInvalidFrameSize)

	svc, err := NewService(raw, memory.New())
	require.NoError(t, err)
	assert.Equal(t, DefaultFrameSize, svc.FrameSize())
}

func TestUploadDocument(t *testing.T) {
	ctx := context.Background()
	svc, raw, ch := newTestService(t)

	tests := []struct {
		filename string
		want     core.ContentType
	}{
		{"report.pdf", core.ContentTypePDF},
		{"REPORT.PDF", core.ContentTypePDF},
		{"notes.txt", core.ContentTypeText},
		{"README", core.ContentTypeText},
	}
	for i, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			content := []byte("content of " + tt.filename)
			id, msg, err := svc.UploadDocument(ctx, tt.filename, content)
			require.NoError(t, err)
			assert.NotEmpty(t, id)
			assert.Equal(t, UploadMessage, msg)

			stored, err := raw.Get(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, content, stored)

			published := ch.Events()
			require.Len(t, published, i+1)
			event := published[i]
			assert.Equal(t, id, event.DocumentID)
			assert.Equal(t, tt.filename, event.Filename)
			assert.Equal(t, tt.want, event.ContentType)
		})
	}
}

func TestUploadDocument_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("publish failure", func(t *testing.T) {
		raw, err := disk.NewStore(t.TempDir())
		require.NoError(t, err)
		svc, err := NewService(raw, failingPublisher{})
		require.NoError(t, err)

		id, _, err := svc.UploadDocument(ctx, "a.txt", []byte("x"))
		assert.ErrorIs(t, err, ErrInternal)
		assert.Empty(t, id)
	})

	t.Run("storage failure", func(t *testing.T) {
		ch := memory.New()
		svc, err := NewService(&brokenStore{}, ch)
		require.NoError(t, err)

		id, _, err := svc.UploadDocument(ctx, "a.txt", []byte("x"))
		assert.ErrorIs(t, err, ErrInternal)
		assert.Empty(t, id)
		assert.Zero(t, ch.Len(), "nothing is published when the bytes weren't stored")
	})

	t.Run("id collision", func(t *testing.T) {
		svc, _, _ := newTestService(t, WithIDGenerator(func() string { return "fixed" }))
		_, _, err := svc.UploadDocument(ctx, "a.txt", []byte("one"))
		require.NoError(t, err)
		_, _, err = svc.UploadDocument(ctx, "b.txt", []byte("two"))
		assert.ErrorIs(t, err, ErrInternal)
	})
}

func TestUploadDocument_ConcurrentDistinctIDs(t *testing.T) {
	ctx := context.Background()
	svc, raw, _ := newTestService(t)

	const n = 50
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, _, err := svc.UploadDocument(ctx, "doc.txt", []byte(strings.Repeat("x", i+1)))
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for i, id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true

		data, err := raw.Get(ctx, id)
		require.NoError(t, err)
		assert.Len(t, data, i+1, "upload %d was not overwritten", i)
	}

	stored, err := raw.List(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, n)
}

func TestGetDocument(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	content := []byte{0x00, 0x01, 0xff, '\n', 'z'}
	id, _, err := svc.UploadDocument(ctx, "bin.dat", content)
	require.NoError(t, err)

	name, got, err := svc.GetDocument(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, name)
	assert.Equal(t, content, got)

	_, _, err = svc.GetDocument(ctx, "does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = svc.GetDocument(ctx, "../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	broken, err := NewService(&brokenStore{}, memory.New())
	require.NoError(t, err)
	_, _, err = broken.GetDocument(ctx, "x")
	assert.ErrorIs(t, err, ErrInternal)
}

func TestDownloadDocument_Frames(t *testing.T) {
	ctx := context.Background()
	const frame = 8
	svc, _, _ := newTestService(t, WithFrameSize(frame))

	tests := []struct {
		name       string
		size       int
		wantFrames int
	}{
		{"empty", 0, 0},
		{"smaller than frame", 5, 1},
		{"exactly one frame", 8, 1},
		{"larger than frame", 20, 3},
		{"multiple of frame", 24, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := make([]byte, tt.size)
			for i := range content {
				content[i] = byte(i * 7)
			}
			id, _, err := svc.UploadDocument(ctx, "f.bin", content)
			require.NoError(t, err)

			var got bytes.Buffer
			frames := 0
			err = svc.DownloadDocument(ctx, id, func(b []byte) error {
				assert.LessOrEqual(t, len(b), frame)
				frames++
				got.Write(b)
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantFrames, frames)
			assert.Equal(t, len(content), got.Len())
			assert.True(t, bytes.Equal(content, got.Bytes()), "downloaded bytes differ")
		})
	}
}

func TestDownloadDocument_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	called := false
	err := svc.DownloadDocument(context.Background(), "missing", func([]byte) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, called, "no frame before not-found")
}

func TestDownloadDocument_ReadFailureMidStream(t *testing.T) {
	svc, err := NewService(&brokenStore{readable: 10}, memory.New(), WithFrameSize(8))
	require.NoError(t, err)

	frames := 0
	err = svc.DownloadDocument(context.Background(), "x", func([]byte) error {
		frames++
		return nil
	})
	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, 1, frames, "frames already sent stay sent")
}

func TestDownloadDocument_SendErrorStops(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, WithFrameSize(4))
	id, _, err := svc.UploadDocument(ctx, "f.txt", []byte("0123456789abcdef"))
	require.NoError(t, err)

	gone := errors.New("client disconnected")
	frames := 0
	err = svc.DownloadDocument(ctx, id, func([]byte) error {
		frames++
		if frames == 2 {
			return gone
		}
		return nil
	})
	assert.ErrorIs(t, err, gone)
	assert.Equal(t, 2, frames)
}
