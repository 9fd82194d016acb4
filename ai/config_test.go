package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.ExtractorHost)
	assert.Equal(t, "nomic-embed-text", cfg.EmbeddingModel)
	assert.Equal(t, "llama3", cfg.ExtractorModel)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("with custom host", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://custom:8080/v1"))

		assert.Equal(t, "http://custom:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://custom:8080/v1", cfg.ExtractorHost)
	})

	t.Run("with separate hosts", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://embed:8080/v1"),
			WithExtractorHost("http://extract:9090/v1"),
		)

		assert.Equal(t, "http://embed:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://extract:9090/v1", cfg.ExtractorHost)
	})

	t.Run("with custom models and key", func(t *testing.T) {
		cfg := NewConfig(
			WithProvider(ProviderGemini),
			WithEmbeddingModel("gemini-embedding-001"),
			WithExtractorModel("gemini-1.5-flash"),
			WithAPIKey("secret"),
		)

		assert.Equal(t, ProviderGemini, cfg.Provider)
		assert.Equal(t, "gemini-embedding-001", cfg.EmbeddingModel)
		assert.Equal(t, "gemini-1.5-flash", cfg.ExtractorModel)
		assert.Equal(t, "secret", cfg.APIKey)
	})
}

func TestConfig_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"adds v1", "http://localhost:11434", "http://localhost:11434/v1"},
		{"trailing slash", "http://localhost:11434/", "http://localhost:11434/v1"},
		{"already v1", "http://localhost:11434/v1", "http://localhost:11434/v1"},
		{"empty stays empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Provider: ProviderOpenAI, EmbeddingHost: tt.in, ExtractorHost: tt.in}
			cfg.Normalize()
			assert.Equal(t, tt.want, cfg.EmbeddingHost)
			assert.Equal(t, tt.want, cfg.ExtractorHost)
		})
	}

	t.Run("gemini hosts untouched", func(t *testing.T) {
		cfg := &Config{Provider: ProviderGemini, EmbeddingHost: "http://x"}
		cfg.Normalize()
		assert.Equal(t, "http://x", cfg.EmbeddingHost)
	})

	t.Run("empty provider defaults to openai", func(t *testing.T) {
		cfg := &Config{}
		cfg.Normalize()
		assert.Equal(t, ProviderOpenAI, cfg.Provider)
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr string
	}{
		{
			name:    "missing embedding host",
			cfg:     NewConfig(WithEmbeddingHost("")),
			wantErr: "EmbeddingHost is required",
		},
		{
			name:    "missing extractor host",
			cfg:     NewConfig(WithExtractorHost("")),
			wantErr: "ExtractorHost is required",
		},
		{
			name:    "missing embedding model",
			cfg:     NewConfig(WithEmbeddingModel("")),
			wantErr: "EmbeddingModel is required",
		},
		{
			name:    "missing extractor model",
			cfg:     NewConfig(WithExtractorModel("")),
			wantErr: "ExtractorModel is required",
		},
		{
			name:    "gemini without key",
			cfg:     NewConfig(WithProvider(ProviderGemini)),
			wantErr: "APIKey is required",
		},
		{
			name:    "unknown provider",
			cfg:     NewConfig(WithProvider("bedrock")),
			wantErr: "unknown provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("validate normalizes", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://ollama:11434"))
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "http://ollama:11434/v1", cfg.EmbeddingHost)
	})

	t.Run("gemini with key", func(t *testing.T) {
		cfg := NewConfig(WithProvider(ProviderGemini), WithAPIKey("k"))
		assert.NoError(t, cfg.Validate())
	})
}
