package badger

import (
	"context"
	"testing"

	"github.com/poiesic/docindex/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusRepository(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	repo := NewStatusRepository(backend)
	ctx := context.Background()

	t.Run("missing status is nil", func(t *testing.T) {
		status, err := repo.LoadStatus(ctx, "unknown")
		require.NoError(t, err)
		assert.Nil(t, status)
	})

	t.Run("save then load", func(t *testing.T) {
		require.NoError(t, repo.SaveStatus(ctx, &core.IngestStatus{
			DocumentID: "d1",
			State:      core.IngestStateDone,
			Chunks:     5,
			Indexed:    4,
			Skipped:    1,
		}))

		status, err := repo.LoadStatus(ctx, "d1")
		require.NoError(t, err)
		require.NotNil(t, status)
		assert.Equal(t, core.IngestStateDone, status.State)
		assert.Equal(t, 4, status.Indexed)
		assert.False(t, status.UpdatedAt.IsZero())
	})

	t.Run("save replaces", func(t *testing.T) {
		require.NoError(t, repo.SaveStatus(ctx, &core.IngestStatus{
			DocumentID: "d1",
			State:      core.IngestStateSkippedEmpty,
		}))

		status, err := repo.LoadStatus(ctx, "d1")
		require.NoError(t, err)
		assert.Equal(t, core.IngestStateSkippedEmpty, status.State)
		assert.Zero(t, status.Indexed)
	})
}
