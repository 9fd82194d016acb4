package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{"localhost:9092"}, cfg.Brokers)
	assert.Equal(t, "document-uploads", cfg.Topic)
	assert.Equal(t, "document-processor", cfg.GroupID)
	assert.Equal(t, "earliest", cfg.OffsetReset)
	assert.Equal(t, "./documents", cfg.StorageRoot)
	assert.Equal(t, VectorBackendBadger, cfg.VectorBackend)
	assert.Equal(t, "./vector_index", cfg.BadgerPath)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "nomic-embed-text", cfg.EmbeddingModel)
	assert.Equal(t, "llama3", cfg.ExtractorModel)
	assert.Equal(t, 512, cfg.ChunkSize)
	assert.Equal(t, 100, cfg.ChunkOverlap)
	assert.Equal(t, "0.0.0.0:50051", cfg.RPCAddress)
	assert.Equal(t, 10, cfg.RPCWorkers)
	assert.Equal(t, 100<<20, cfg.MaxMessageSize)
	assert.Equal(t, 1<<20, cfg.FrameSize)
	assert.False(t, cfg.HTTPEnabled)
	assert.Equal(t, ":8080", cfg.HTTPAddress)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }},
		{"negative overlap", func(c *Config) { c.ChunkOverlap = -1 }},
		{"overlap equals size", func(c *Config) { c.ChunkOverlap = c.ChunkSize }},
		{"zero ingest workers", func(c *Config) { c.IngestWorkers = 0 }},
		{"zero upsert attempts", func(c *Config) { c.UpsertAttempts = 0 }},
		{"zero rpc workers", func(c *Config) { c.RPCWorkers = 0 }},
		{"zero frame size", func(c *Config) { c.FrameSize = 0 }},
		{"frame larger than message", func(c *Config) { c.FrameSize = c.MaxMessageSize + 1 }},
		{"negative rate limit", func(c *Config) { c.AIRateLimit = -1 }},
		{"unknown offset reset", func(c *Config) { c.OffsetReset = "middle" }},
		{"unknown raw backend", func(c *Config) { c.RawBackend = "ftp" }},
		{"s3 without bucket", func(c *Config) { c.RawBackend = RawBackendS3 }},
		{"disk without root", func(c *Config) { c.StorageRoot = "" }},
		{"unknown vector backend", func(c *Config) { c.VectorBackend = "faiss" }},
		{"pgvector without url", func(c *Config) { c.VectorBackend = VectorBackendPGVector }},
		{"unknown ai provider", func(c *Config) { c.AIProvider = "markov" }},
		{"gemini without key", func(c *Config) { c.AIProvider = "gemini" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}

	t.Run("valid alternatives", func(t *testing.T) {
		cfg := Default()
		cfg.RawBackend = RawBackendS3
		cfg.S3Bucket = "docs"
		cfg.VectorBackend = VectorBackendPGVector
		cfg.DatabaseURL = "postgres://localhost/docindex"
		cfg.AIProvider = "gemini"
		cfg.APIKey = "key"
		cfg.OffsetReset = "latest"
		assert.NoError(t, cfg.Validate())
	})
}

func TestLoad_TOMLFile(t *testing.T) {
	path := writeFile(t, "docindex.toml", `
brokers = ["kafka-1:9092", "kafka-2:9092"]
topic = "uploads"
chunk-size = 256
chunk-overlap = 32
poll-timeout = "250ms"
http-enabled = true
min-similarity = 0.5
`)

	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Brokers)
	assert.Equal(t, "uploads", cfg.Topic)
	assert.Equal(t, 256, cfg.ChunkSize)
	assert.Equal(t, 32, cfg.ChunkOverlap)
	assert.Equal(t, 250*time.Millisecond, time.Duration(cfg.PollTimeout))
	assert.True(t, cfg.HTTPEnabled)
	assert.InDelta(t, 0.5, cfg.MinSimilarity, 1e-6)
	// untouched keys keep their defaults
	assert.Equal(t, "document-processor", cfg.GroupID)
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, "docindex.toml", `chunk-sise = 256`)
	_, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"), "")
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "docindex.toml", `topic = "from-file"`)
	t.Setenv("DOCINDEX_TOPIC", "from-env")
	t.Setenv("DOCINDEX_BROKERS", "a:1, b:2,")

	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Topic)
	assert.Equal(t, []string{"a:1", "b:2"}, cfg.Brokers)
}

func TestLoad_DotEnv(t *testing.T) {
	envFile := writeFile(t, ".env", "DOCINDEX_GROUP_ID=dotenv-group\n")
	// godotenv does not override variables that are already set, so make
	// sure the key is absent and cleaned up afterwards.
	t.Setenv("DOCINDEX_GROUP_ID", "")
	require.NoError(t, os.Unsetenv("DOCINDEX_GROUP_ID"))

	cfg, err := Load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, "dotenv-group", cfg.GroupID)
}

func TestLoad_InvalidResult(t *testing.T) {
	t.Setenv("DOCINDEX_CHUNK_OVERLAP", "600")
	_, err := Load("", filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestApplyEnv(t *testing.T) {
	environ := map[string]string{
		"DOCINDEX_CHUNK_SIZE":      "1024",
		"DOCINDEX_HTTP_ENABLED":    "true",
		"DOCINDEX_AI_RATE_LIMIT":   "2.5",
		"DOCINDEX_MIN_SIMILARITY":  "0.75",
		"DOCINDEX_MAX_UPLOAD_SIZE": "2048",
		"DOCINDEX_POLL_TIMEOUT":    "3s",
		"DOCINDEX_S3_ACCESS_KEY":   "AKIA",
		"DOCINDEX_ALLOWED_ORIGINS": "https://a.example, https://b.example",
		"TOPIC":                    "unprefixed is ignored",
	}

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(environ))
	assert.Equal(t, 1024, cfg.ChunkSize)
	assert.True(t, cfg.HTTPEnabled)
	assert.Equal(t, 2.5, cfg.AIRateLimit)
	assert.InDelta(t, 0.75, cfg.MinSimilarity, 1e-6)
	assert.Equal(t, int64(2048), cfg.MaxUploadSize)
	assert.Equal(t, 3*time.Second, time.Duration(cfg.PollTimeout))
	assert.Equal(t, "AKIA", cfg.S3AccessKey)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, Default().Topic, cfg.Topic)
	// unset variables keep their defaults
	assert.Equal(t, Default().Brokers, cfg.Brokers)

	environ["DOCINDEX_RPC_WORKERS"] = "many"
	err := Default().ApplyEnv(environ)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "RPCWorkers")
}

func TestConversions(t *testing.T) {
	cfg := Default()
	cfg.APIKey = "secret"

	aiCfg := cfg.AIConfig()
	assert.Equal(t, cfg.EmbeddingModel, aiCfg.EmbeddingModel)
	assert.Equal(t, "secret", aiCfg.APIKey)

	kc := cfg.KafkaConfig()
	assert.Equal(t, cfg.Brokers, kc.Brokers)
	assert.Equal(t, cfg.GroupID, kc.GroupID)
	assert.Equal(t, time.Second, kc.MaxWait)
}
