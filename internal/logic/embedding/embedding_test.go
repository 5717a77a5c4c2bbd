package embedding

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/Malowking/kbrag/core/errors"
	"github.com/Malowking/kbrag/core/model"
	"github.com/Malowking/kbrag/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbed(t *testing.T) {
	emb := &testutil.HashEmbedder{}
	svc := New(model.NewLoadedHandles(model.Config{}, emb, nil, nil, nil))

	res, err := svc.Embed(context.Background(), "héllo world")
	require.NoError(t, err)
	assert.Len(t, res.Embedding, testutil.HashDimension)
	assert.Equal(t, testutil.HashDimension, res.EmbeddingDimension)
	assert.Equal(t, 11, res.TextLength)
	assert.Equal(t, "hash-embedder", res.ModelInfo.Name)

	again, err := svc.Embed(context.Background(), "héllo world")
	require.NoError(t, err)
	assert.Equal(t, res.Embedding, again.Embedding)
}

func TestEmbedBatch(t *testing.T) {
	emb := &testutil.HashEmbedder{}
	svc := New(model.NewLoadedHandles(model.Config{}, emb, nil, nil, nil))

	res, err := svc.EmbedBatch(context.Background(), []string{"a", "b", "a"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.TextCount)
	require.Len(t, res.Embeddings, 3)
	assert.Equal(t, res.Embeddings[0], res.Embeddings[2])
	assert.NotEqual(t, res.Embeddings[0], res.Embeddings[1])
	assert.Equal(t, 1, emb.Calls)
}

func TestEmbedValidation(t *testing.T) {
	svc := New(model.NewLoadedHandles(model.Config{}, &testutil.HashEmbedder{}, nil, nil, nil))

	_, err := svc.Embed(context.Background(), "")
	assert.True(t, errors.IsValidation(err))

	_, err = svc.Embed(context.Background(), strings.Repeat("x", 10001))
	assert.True(t, errors.IsValidation(err))

	_, err = svc.EmbedBatch(context.Background(), nil)
	assert.True(t, errors.IsValidation(err))

	_, err = svc.EmbedBatch(context.Background(), make([]string, MaxBatchTexts+1))
	assert.True(t, errors.IsValidation(err))
}

func TestEmbedBackendFailure(t *testing.T) {
	emb := &testutil.HashEmbedder{Err: stderrors.New("gpu unavailable")}
	svc := New(model.NewLoadedHandles(model.Config{}, emb, nil, nil, nil))

	_, err := svc.Embed(context.Background(), "text")
	require.Error(t, err)
	assert.True(t, errors.IsEmbedding(err))
}

func TestEmbedNotLoaded(t *testing.T) {
	svc := New(model.NewHandles(model.Config{}))
	_, err := svc.Embed(context.Background(), "text")
	assert.True(t, errors.IsModelNotLoaded(err))
	assert.False(t, svc.Status().IsLoaded)
}
