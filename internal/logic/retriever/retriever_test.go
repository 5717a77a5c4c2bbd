package retriever

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/Malowking/kbrag/core/errors"
	"github.com/Malowking/kbrag/core/model"
	"github.com/Malowking/kbrag/internal/testutil"
	"github.com/Malowking/kbrag/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, svc *Service, emb *testutil.HashEmbedder, contents ...string) {
	t.Helper()
	vectors, err := emb.EmbedStrings(context.Background(), contents)
	require.NoError(t, err)
	docs := make([]schema.Document, len(contents))
	for i, c := range contents {
		docs[i] = schema.Document{ID: c, Content: c, Embedding: vectors[i]}
	}
	ok, err := svc.store.Upsert(context.Background(), docs)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRetrieveEmptyStore(t *testing.T) {
	emb := &testutil.HashEmbedder{}
	svc := New(model.NewLoadedHandles(model.Config{}, emb, nil, nil, nil), testutil.NewStore(t))

	results, err := svc.Retrieve(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestRetrieveSortedByScore(t *testing.T) {
	emb := &testutil.HashEmbedder{}
	svc := New(model.NewLoadedHandles(model.Config{}, emb, nil, nil, nil), testutil.NewStore(t))
	seed(t, svc, emb, "vector search engine", "cooking pasta", "vector database", "search tips")

	results, err := svc.Retrieve(context.Background(), "vector search", 10)
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, "vector search engine", results[0].ID)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}

	results, err = svc.Retrieve(context.Background(), "vector search", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestRetrieveErrors(t *testing.T) {
	emb := &testutil.HashEmbedder{}
	svc := New(model.NewLoadedHandles(model.Config{}, emb, nil, nil, nil), testutil.NewStore(t))

	_, err := svc.Retrieve(context.Background(), "  ", 5)
	assert.True(t, errors.IsValidation(err))

	_, err = svc.Retrieve(context.Background(), "q", 0)
	assert.True(t, errors.IsValidation(err))

	emb.Err = stderrors.New("connection refused")
	_, err = svc.Retrieve(context.Background(), "q", 5)
	assert.True(t, errors.IsEmbedding(err))

	notLoaded := New(model.NewHandles(model.Config{}), testutil.NewStore(t))
	_, err = notLoaded.Retrieve(context.Background(), "q", 5)
	assert.True(t, errors.IsModelNotLoaded(err))
}

func TestSearchOutcome(t *testing.T) {
	emb := &testutil.HashEmbedder{}
	svc := New(model.NewLoadedHandles(model.Config{}, emb, nil, nil, nil), testutil.NewStore(t))
	seed(t, svc, emb, "A", "B")

	out := svc.Search(context.Background(), "A", 1)
	require.True(t, out.Success)
	assert.Equal(t, "A", out.Query)
	assert.Equal(t, 1, out.TotalFound)
	require.Len(t, out.Documents, 1)
	assert.Equal(t, "A", out.Documents[0].Content)

	emb.Err = stderrors.New("boom")
	out = svc.Search(context.Background(), "A", 1)
	assert.False(t, out.Success)
	assert.Empty(t, out.Documents)
	assert.Contains(t, out.Message, "boom")
}
