package model

import (
	"context"
	"testing"
	"time"

	"github.com/Malowking/kbrag/core/embedding"
	"github.com/Malowking/kbrag/core/errors"
	"github.com/Malowking/kbrag/core/generation"
	"github.com/Malowking/kbrag/core/rerank"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct{}

func (stubEmbedder) EmbedStrings(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}
func (stubEmbedder) Dimension() int { return 2 }
func (stubEmbedder) Model() string  { return "stub-embed" }

func TestHandlesNotLoaded(t *testing.T) {
	h := NewHandles(Config{})

	_, err := h.Embedder()
	assert.True(t, errors.IsModelNotLoaded(err))
	_, err = h.Generator()
	assert.True(t, errors.IsModelNotLoaded(err))
	_, err = h.Scorer()
	assert.True(t, errors.IsModelNotLoaded(err))
	_, err = h.Catalog()
	assert.True(t, errors.IsModelNotLoaded(err))
	assert.Empty(t, h.Names())
}

func TestHandlesLoadFailsOnce(t *testing.T) {
	h := NewHandles(Config{Embedding: embedding.Config{Dimension: 0}})

	err := h.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrModelConfigInvalid, errors.CodeOf(err))

	// 初始化只执行一次
	again := h.Load(context.Background())
	assert.Same(t, err, again)

	_, err = h.Embedder()
	assert.True(t, errors.IsModelNotLoaded(err))
}

func TestLoadedHandlesAndClose(t *testing.T) {
	scorer := rerank.NewBM25Scorer(rerank.DefaultBM25Parameters())
	h := NewLoadedHandles(Config{}, stubEmbedder{}, nil, scorer, nil)
	require.NoError(t, h.Load(context.Background()))

	e, err := h.Embedder()
	require.NoError(t, err)
	assert.Equal(t, "stub-embed", e.Model())

	s, err := h.Scorer()
	require.NoError(t, err)
	assert.Equal(t, "bm25", s.Model())

	_, err = h.Generator()
	assert.True(t, errors.IsModelNotLoaded(err))

	assert.Equal(t, map[ModelType]string{
		ModelTypeEmbedding: "stub-embed",
		ModelTypeReranker:  "bm25",
	}, h.Names())

	h.Close(context.Background())
	_, err = h.Embedder()
	assert.True(t, errors.IsModelNotLoaded(err))
	_, err = h.Scorer()
	assert.True(t, errors.IsModelNotLoaded(err))
}

func TestHandlesRetryConfig(t *testing.T) {
	cfg := NewHandles(Config{}).RetryConfig()
	assert.Equal(t, DefaultRetryConfig(), cfg)

	cfg = NewHandles(Config{Chat: generation.Config{MaxRetries: 5, RetryDelayMs: 20}}).RetryConfig()
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 20*time.Millisecond, cfg.RetryDelay)
}
