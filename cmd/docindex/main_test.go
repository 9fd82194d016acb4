package main

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/docindex/core"
	"github.com/poiesic/docindex/events/memory"
	"github.com/poiesic/docindex/frontdoor"
	"github.com/poiesic/docindex/storage/badger"
	"github.com/poiesic/docindex/storage/disk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// runApp runs the CLI with isolated storage and no .env file.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runAppIn(t, t.TempDir(), args...)
}

// runAppIn runs the CLI with its stores under dir.
func runAppIn(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	base := []string{"docindex",
		"--env-file", filepath.Join(dir, "missing.env"),
		"--storage-root", filepath.Join(dir, "documents"),
		"--badger-path", filepath.Join(dir, "vector_index"),
	}
	err := app.Run(append(base, args...))
	return out.String(), err
}

func startFrontDoor(t *testing.T) string {
	t.Helper()
	raw, err := disk.NewStore(t.TempDir())
	require.NoError(t, err)
	svc, err := frontdoor.NewService(raw, memory.New(), frontdoor.WithFrameSize(8))
	require.NoError(t, err)
	server, err := frontdoor.NewServer(svc)
	require.NoError(t, err)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go server.Serve(lis)
	t.Cleanup(server.Stop)
	return lis.Addr().String()
}

func TestSetupLogger(t *testing.T) {
	t.Run("invalid level", func(t *testing.T) {
		_, err := runApp(t, "--log-level", "verbose", "status", "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("level is case insensitive", func(t *testing.T) {
		_, err := runApp(t, "--log-level", "DEBUG", "status", "x")
		assert.NoError(t, err)
	})
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	var captured string
	app := newApp()
	app.Commands = []*cli.Command{{
		Name: "show-config",
		Action: func(c *cli.Context) error {
			cfg, err := configFrom(c)
			if err != nil {
				return err
			}
			captured = cfg.Topic + "|" + strings.Join(cfg.Brokers, ",")
			return nil
		},
	}}
	dir := t.TempDir()
	err := app.Run([]string{"docindex",
		"--env-file", filepath.Join(dir, "missing.env"),
		"--topic", "flag-topic",
		"--brokers", "k1:9092", "--brokers", "k2:9092",
		"show-config"})
	require.NoError(t, err)
	assert.Equal(t, "flag-topic|k1:9092,k2:9092", captured)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := runApp(t, "--vector-backend", "faiss", "status", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vector-backend")
}

func TestStatusCommand(t *testing.T) {
	out, err := runApp(t, "status", "unknown-doc")
	require.NoError(t, err)
	assert.Contains(t, out, "unknown-doc: no ingestion recorded (0 chunks in index)")

	_, err = runApp(t, "status")
	assert.Error(t, err)
}

func TestStatusCommand_ReportsIndexedChunks(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	backend, err := badger.OpenBackend(filepath.Join(dir, "vector_index"), false)
	require.NoError(t, err)
	index := badger.NewChunkIndex(backend)
	for i := 0; i < 3; i++ {
		require.NoError(t, index.Upsert(ctx, &core.ChunkRecord{
			ChunkID:    core.ChunkID("doc1", i),
			DocumentID: "doc1",
			Index:      i,
			Text:       "chunk text",
			Vector:     []float32{1, 0},
		}))
	}
	require.NoError(t, badger.NewStatusRepository(backend).SaveStatus(ctx, &core.IngestStatus{
		DocumentID: "doc1",
		State:      core.IngestStateDone,
		Chunks:     4,
		Indexed:    3,
		Skipped:    1,
	}))
	require.NoError(t, backend.Close())

	out, err := runAppIn(t, dir, "status", "doc1")
	require.NoError(t, err)
	assert.Contains(t, out, "doc1: done (chunks 4, indexed 3, skipped 1, 3 in index) at ")
}

func TestSearchCommand_RequiresQuery(t *testing.T) {
	_, err := runApp(t, "search")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query")
}

func TestClientCommands(t *testing.T) {
	addr := startFrontDoor(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "notes.txt")
	content := []byte("frames of eight bytes each, plus a tail")
	require.NoError(t, os.WriteFile(src, content, 0644))

	out, err := runApp(t, "upload", "--server", addr, src)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, frontdoor.UploadMessage, lines[0])
	id := lines[1]

	out, err = runApp(t, "get", "--server", addr, id)
	require.NoError(t, err)
	assert.Equal(t, string(content), out)

	dst := filepath.Join(dir, "copy.txt")
	out, err = runApp(t, "download", "--server", addr, "--out", dst, id)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 39 bytes")
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	_, err = runApp(t, "download", "--server", addr, "--out", filepath.Join(dir, "missing"), "no-such-id")
	require.ErrorIs(t, err, frontdoor.ErrNotFound)
	assert.NoFileExists(t, filepath.Join(dir, "missing"))
}

func TestUploadCommand_RequiresFile(t *testing.T) {
	_, err := runApp(t, "upload")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "a b c", preview("a\n b\t\tc", 10))
	assert.Equal(t, "abc...", preview("abcdef", 3))
}
