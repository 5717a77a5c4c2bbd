package config

import (
	"context"
	"testing"

	"github.com/Malowking/kbrag/core/vector_store"
	"github.com/gogf/gf/v2/os/gcfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
vectorStore:
  type: "chromem"
  collection: "kb_docs"
chromem:
  path: ""
embedding:
  provider: "http"
  baseURL: "http://localhost:8081/v1"
  model: "bge-m3"
  dimension: 1024
chat:
  provider: "openai"
  baseURL: "http://localhost:11434/v1"
  apiKey: "sk-local"
  model: "qwen2.5"
  maxRetries: 2
  retryDelayMs: 100
rerank:
  provider: "bm25"
  concurrency: 4
`

func loadSample(t *testing.T, content string) *Config {
	t.Helper()
	adapter, err := gcfg.NewAdapterContent(content)
	require.NoError(t, err)
	cfg, err := LoadFrom(context.Background(), gcfg.NewWithAdapter(adapter))
	require.NoError(t, err)
	return cfg
}

func TestLoadFrom(t *testing.T) {
	cfg := loadSample(t, sampleYAML)

	assert.Equal(t, vector_store.VectorStoreTypeChromem, cfg.VectorStore.Type)
	assert.Equal(t, "kb_docs", cfg.VectorStore.Collection)
	// 维度沿用 embedding.dimension
	assert.Equal(t, 1024, cfg.VectorStore.Dimension)

	assert.Equal(t, "bge-m3", cfg.Models.Embedding.Model)
	assert.Equal(t, "qwen2.5", cfg.Models.Chat.Model)
	assert.Equal(t, 2, cfg.Models.Chat.MaxRetries)
	assert.Equal(t, 100, cfg.Models.Chat.RetryDelayMs)
	assert.Equal(t, 4, cfg.Models.Rerank.Concurrency)

	require.NoError(t, cfg.Validate(context.Background()))
}

func TestLoadFromDefaults(t *testing.T) {
	cfg := loadSample(t, "embedding:\n  dimension: 8\n")
	assert.Equal(t, vector_store.VectorStoreTypeMilvus, cfg.VectorStore.Type)
	assert.Equal(t, "documents", cfg.VectorStore.Collection)
	assert.Equal(t, 8, cfg.VectorStore.Dimension)
}

func TestValidateReportsMissingItems(t *testing.T) {
	cfg := loadSample(t, `
vectorStore:
  type: "milvus"
  dimension: 768
embedding:
  dimension: 1024
rerank:
  provider: "http"
`)
	err := cfg.Validate(context.Background())
	require.Error(t, err)
	for _, want := range []string{"milvus.address", "embedding.baseURL", "embedding.model", "chat.model", "rerank.baseURL", "vectorStore.dimension"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidateRejectsUnknownStore(t *testing.T) {
	cfg := loadSample(t, sampleYAML)
	cfg.VectorStore.Type = "faiss"
	err := cfg.Validate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "faiss")
}
