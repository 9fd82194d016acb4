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


// Package config holds the settings shared by every docindex command.
//
// Values are layered, lowest precedence first: Default, an optional TOML
// file, a .env file, then DOCINDEX_* environment variables. Command-line
// flags are applied on top by the CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/poiesic/docindex/ai"
	"github.com/poiesic/docindex/events/kafka"
)

const (
	RawBackendDisk = "disk"
	RawBackendS3   = "s3"

	VectorBackendBadger   = "badger"
	VectorBackendPGVector = "pgvector"

	// EnvPrefix prefixes every environment variable Load reads.
	EnvPrefix = "DOCINDEX_"
)

// Config is the flat set of docindex settings.
type Config struct {
	// Event channel
	Brokers     []string `toml:"brokers" env:"BROKERS"`
	Topic       string   `toml:"topic" env:"TOPIC"`
	GroupID     string   `toml:"group-id" env:"GROUP_ID"`
	OffsetReset string   `toml:"offset-reset" env:"OFFSET_RESET"`
	PollTimeout Duration `toml:"poll-timeout" env:"POLL_TIMEOUT"`

	// Raw storage
	RawBackend  string `toml:"raw-backend" env:"RAW_BACKEND"`
	StorageRoot string `toml:"storage-root" env:"STORAGE_ROOT"`
	S3Bucket    string `toml:"s3-bucket" env:"S3_BUCKET"`
	S3Prefix    string `toml:"s3-prefix" env:"S3_PREFIX"`
	S3Region    string `toml:"s3-region" env:"S3_REGION"`
	S3Endpoint  string `toml:"s3-endpoint" env:"S3_ENDPOINT"`
	S3AccessKey string `toml:"s3-access-key" env:"S3_ACCESS_KEY"`
	S3SecretKey string `toml:"s3-secret-key" env:"S3_SECRET_KEY"`

	// Vector index and ingestion status
	VectorBackend string  `toml:"vector-backend" env:"VECTOR_BACKEND"`
	BadgerPath    string  `toml:"badger-path" env:"BADGER_PATH"`
	DatabaseURL   string  `toml:"database-url" env:"DATABASE_URL"`
	MinSimilarity float32 `toml:"min-similarity" env:"MIN_SIMILARITY"`

	// AI services
	AIProvider     string  `toml:"ai-provider" env:"AI_PROVIDER"`
	EmbeddingHost  string  `toml:"embedding-host" env:"EMBEDDING_HOST"`
	ExtractorHost  string  `toml:"extractor-host" env:"EXTRACTOR_HOST"`
	EmbeddingModel string  `toml:"embedding-model" env:"EMBEDDING_MODEL"`
	ExtractorModel string  `toml:"extractor-model" env:"EXTRACTOR_MODEL"`
	APIKey         string  `toml:"api-key" env:"API_KEY"`
	AIRateLimit    float64 `toml:"ai-rate-limit" env:"AI_RATE_LIMIT"`
	AIRateBurst    int     `toml:"ai-rate-burst" env:"AI_RATE_BURST"`

	// Ingestion worker
	ChunkSize      int `toml:"chunk-size" env:"CHUNK_SIZE"`
	ChunkOverlap   int `toml:"chunk-overlap" env:"CHUNK_OVERLAP"`
	IngestWorkers  int `toml:"ingest-workers" env:"INGEST_WORKERS"`
	UpsertAttempts int `toml:"upsert-attempts" env:"UPSERT_ATTEMPTS"`

	// Front door
	RPCAddress     string   `toml:"rpc-address" env:"RPC_ADDRESS"`
	RPCWorkers     int      `toml:"rpc-workers" env:"RPC_WORKERS"`
	MaxMessageSize int      `toml:"max-message-size" env:"MAX_MESSAGE_SIZE"`
	FrameSize      int      `toml:"frame-size" env:"FRAME_SIZE"`
	HTTPEnabled    bool     `toml:"http-enabled" env:"HTTP_ENABLED"`
	HTTPAddress    string   `toml:"http-address" env:"HTTP_ADDRESS"`
	AllowedOrigins []string `toml:"allowed-origins" env:"ALLOWED_ORIGINS"`
	MaxUploadSize  int64    `toml:"max-upload-size" env:"MAX_UPLOAD_SIZE"`
}

// Default returns the built-in settings.
func Default() *Config {
	aiDefaults := ai.DefaultConfig()
	return &Config{
		Brokers:     []string{"localhost:9092"},
		Topic:       "document-uploads",
		GroupID:     "document-processor",
		OffsetReset: kafka.OffsetEarliest,
		PollTimeout: Duration(time.Second),

		RawBackend:  RawBackendDisk,
		StorageRoot: "./documents",
		S3Region:    "us-east-1",

		VectorBackend: VectorBackendBadger,
		BadgerPath:    "./vector_index",
		MinSimilarity: 0.3,

		AIProvider:     aiDefaults.Provider,
		EmbeddingHost:  aiDefaults.EmbeddingHost,
		ExtractorHost:  aiDefaults.ExtractorHost,
		EmbeddingModel: aiDefaults.EmbeddingModel,
		ExtractorModel: aiDefaults.ExtractorModel,
		AIRateBurst:    1,

		ChunkSize:      512,
		ChunkOverlap:   100,
		IngestWorkers:  2,
		UpsertAttempts: 3,

		RPCAddress:     "0.0.0.0:50051",
		RPCWorkers:     10,
		MaxMessageSize: 100 << 20,
		FrameSize:      1 << 20,
		HTTPAddress:    ":8080",
		AllowedOrigins: []string{"*"},
		MaxUploadSize:  100 << 20,
	}
}

// Load builds a Config from defaults, the TOML file at path (skipped when
// path is empty), envFile (".env" when empty; a missing file is ignored)
// and the process environment. The result is validated.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := cfg.decodeTOML(data); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", envFile, err)
	}

	if err := cfg.ApplyEnv(nil); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeTOML(data []byte) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(c)
}

// AIConfig converts the AI settings into an ai.Config.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithProvider(c.AIProvider),
		ai.WithEmbeddingHost(c.EmbeddingHost),
		ai.WithExtractorHost(c.ExtractorHost),
		ai.WithEmbeddingModel(c.EmbeddingModel),
		ai.WithExtractorModel(c.ExtractorModel),
		ai.WithAPIKey(c.APIKey),
	)
}

// KafkaConfig converts the event channel settings into a kafka.Config.
func (c *Config) KafkaConfig() kafka.Config {
	return kafka.Config{
		Brokers:     c.Brokers,
		Topic:       c.Topic,
		GroupID:     c.GroupID,
		OffsetReset: c.OffsetReset,
		MaxWait:     time.Duration(c.PollTimeout),
	}
}

// Validate checks the settings for consistency.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.ChunkSize <= 0 {
		fail("chunk-size must be positive")
	}
	if c.ChunkOverlap < 0 {
		fail("chunk-overlap must not be negative")
	}
	if c.ChunkSize > 0 && c.ChunkOverlap >= c.ChunkSize {
		fail("chunk-overlap (%d) must be smaller than chunk-size (%d)", c.ChunkOverlap, c.ChunkSize)
	}
	if c.IngestWorkers <= 0 {
		fail("ingest-workers must be positive")
	}
	if c.UpsertAttempts <= 0 {
		fail("upsert-attempts must be positive")
	}
	if c.RPCWorkers <= 0 {
		fail("rpc-workers must be positive")
	}
	if c.MaxMessageSize <= 0 {
		fail("max-message-size must be positive")
	}
	if c.FrameSize <= 0 {
		fail("frame-size must be positive")
	}
	if c.FrameSize > c.MaxMessageSize {
		fail("frame-size (%d) exceeds max-message-size (%d)", c.FrameSize, c.MaxMessageSize)
	}
	if c.MaxUploadSize <= 0 {
		fail("max-upload-size must be positive")
	}
	if c.AIRateLimit < 0 {
		fail("ai-rate-limit must not be negative")
	}

	switch c.OffsetReset {
	case kafka.OffsetEarliest, kafka.OffsetLatest:
	default:
		fail("unknown offset-reset %q", c.OffsetReset)
	}

	switch c.RawBackend {
	case RawBackendDisk:
		if c.StorageRoot == "" {
			fail("storage-root is required for the disk backend")
		}
	case RawBackendS3:
		if c.S3Bucket == "" {
			fail("s3-bucket is required for the s3 backend")
		}
	default:
		fail("unknown raw-backend %q", c.RawBackend)
	}

	switch c.VectorBackend {
	case VectorBackendBadger:
	case VectorBackendPGVector:
		if c.DatabaseURL == "" {
			fail("database-url is required for the pgvector backend")
		}
	default:
		fail("unknown vector-backend %q", c.VectorBackend)
	}
	if c.BadgerPath == "" {
		fail("badger-path is required")
	}

	if err := c.AIConfig().Validate(); err != nil {
		fail("%v", err)
	}

	return errors.Join(errs...)
}

// Duration is a time.Duration written as a string such as "1s" or "250ms".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}
