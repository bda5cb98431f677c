package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vivekcarvalho/profile-chatbot-be/service"
)

const testConfigYAML = `port: "9090"
llm_provider: google
model: gemini-1.5-flash
google_api_keys:
  - key-one
  - key-two
embedding_model: nomic-embed-text-v1.5
weaviate_store_config:
  host: http://localhost:8081
chunker:
  chunk_size: 256
  chunk_overlap: 32
retrieval:
  top_k: 3
  fetch_k: 15
max_conversation_history: 10
`

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigReadsAllSections(t *testing.T) {
	cfg, err := LoadConfig(writeTestConfig(t, testConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "google", cfg.LLMProvider)
	assert.Equal(t, []string{"key-one", "key-two"}, cfg.GoogleAPIKeys)
	assert.Equal(t, "http://localhost:8081", cfg.WeaviateStoreConfig.Host)
	assert.Equal(t, 256, cfg.Chunker.ChunkSize)
	assert.Equal(t, 32, cfg.Chunker.ChunkOverlap)
	assert.Equal(t, 3, cfg.Retrieval.TopK)
	assert.Equal(t, 15, cfg.Retrieval.FetchK)
	assert.Equal(t, 10, cfg.MaxHistory)
}

func TestLoadConfigChunkerSectionFeedsChunker(t *testing.T) {
	cfg, err := LoadConfig(writeTestConfig(t, testConfigYAML))
	require.NoError(t, err)

	// The chunker section is the chunker's own config type, no conversion.
	chunker, err := service.NewChunkerService(cfg.Chunker)
	require.NoError(t, err)
	assert.Positive(t, chunker.TokenCount("hello world"))
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeTestConfig(t, "model: gpt-4o-mini\n"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.Equal(t, 500, cfg.Chunker.ChunkSize)
	assert.Equal(t, 50, cfg.Chunker.ChunkOverlap)
	assert.Equal(t, 4, cfg.Retrieval.TopK)
	assert.Equal(t, 20, cfg.Retrieval.FetchK)
	assert.Equal(t, 20, cfg.MaxHistory)
}

func TestLoadConfigMissingFileFails(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
