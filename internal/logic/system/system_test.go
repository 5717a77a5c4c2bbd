package system

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Malowking/kbrag/core/errors"
	"github.com/Malowking/kbrag/core/generation"
	"github.com/Malowking/kbrag/core/model"
	"github.com/Malowking/kbrag/core/vector_store"
	"github.com/Malowking/kbrag/internal/testutil"
	"github.com/Malowking/kbrag/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStore struct{ vector_store.Store }

func (brokenStore) Stats(context.Context) (schema.CollectionStats, error) {
	return schema.CollectionStats{}, errors.New(errors.ErrVectorSearch, "milvus unreachable")
}

func modelServer(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/models":
			_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"llama3","object":"model","owned_by":"local"}]}`))
		case "/v1/models/llama3":
			_, _ = w.Write([]byte(`{"id":"llama3","object":"model","owned_by":"local"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"message":"not found"}}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestInfoOperational(t *testing.T) {
	srv := modelServer(t)
	chat := generation.Config{BaseURL: srv.URL + "/v1", Model: "llama3"}
	handles := model.NewLoadedHandles(model.Config{Chat: chat}, &testutil.HashEmbedder{}, &testutil.Generator{}, &testutil.Scorer{}, generation.NewCatalog(chat))
	store := testutil.NewStore(t)

	info := New(handles, store).Info(context.Background())
	require.Equal(t, StatusOperational, info.SystemStatus)
	assert.Equal(t, "test_documents", info.VectorDB.CollectionName)
	assert.Equal(t, int64(0), info.VectorDB.DocumentsCount)
	assert.Equal(t, "fake-llm", info.AIModel.CurrentModel)
	assert.Equal(t, "hash-embedder", info.AIModel.EmbeddingModel)
	assert.Equal(t, "fake-reranker", info.AIModel.RerankModel)
	assert.Equal(t, []string{"llama3"}, info.AIModel.AvailableModels)
}

func TestInfoStoreError(t *testing.T) {
	handles := model.NewLoadedHandles(model.Config{}, &testutil.HashEmbedder{}, nil, nil, nil)
	info := New(handles, brokenStore{}).Info(context.Background())
	assert.Equal(t, StatusError, info.SystemStatus)
	assert.Contains(t, info.ErrorMessage, "milvus unreachable")
	assert.Nil(t, info.VectorDB)
}

func TestModels(t *testing.T) {
	srv := modelServer(t)
	chat := generation.Config{BaseURL: srv.URL + "/v1", Model: "llama3"}
	svc := New(model.NewLoadedHandles(model.Config{}, nil, nil, nil, generation.NewCatalog(chat)), testutil.NewStore(t))

	models, err := svc.Models(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 1)

	m, err := svc.Model(context.Background(), "llama3")
	require.NoError(t, err)
	assert.Equal(t, "local", m.OwnedBy)

	_, err = svc.Model(context.Background(), "ghost")
	assert.Equal(t, errors.ErrModelNotFound, errors.CodeOf(err))

	_, err = New(model.NewHandles(model.Config{}), testutil.NewStore(t)).Models(context.Background())
	assert.True(t, errors.IsModelNotLoaded(err))
}
