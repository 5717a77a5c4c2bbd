package ingest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/Malowking/kbrag/core/errors"
	"github.com/Malowking/kbrag/core/model"
	"github.com/Malowking/kbrag/core/vector_store"
	"github.com/Malowking/kbrag/internal/logic/retriever"
	"github.com/Malowking/kbrag/internal/testutil"
	"github.com/Malowking/kbrag/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// poisonStore 写入包含 "poison" 的文档时整体失败
type poisonStore struct {
	vector_store.Store
	upserts int
	last    []schema.Document
}

func (p *poisonStore) Upsert(ctx context.Context, docs []schema.Document) (bool, error) {
	p.upserts++
	p.last = docs
	for _, d := range docs {
		if strings.Contains(d.Content, "poison") {
			return false, errors.New(errors.ErrVectorInsert, "simulated store failure")
		}
	}
	return p.Store.Upsert(ctx, docs)
}

func newService(t *testing.T) (*Service, *retriever.Service, *poisonStore) {
	emb := &testutil.HashEmbedder{}
	handles := model.NewLoadedHandles(model.Config{}, emb, nil, nil, nil)
	store := &poisonStore{Store: testutil.NewStore(t)}
	return New(handles, store), retriever.New(handles, store), store
}

func docs(contents ...string) []schema.Document {
	out := make([]schema.Document, len(contents))
	for i, c := range contents {
		out[i] = schema.Document{Content: c}
	}
	return out
}

func TestAddDocumentsAssignsIDsInOrder(t *testing.T) {
	svc, _, _ := newService(t)
	input := []schema.Document{
		{Content: "first"},
		{ID: "fixed-id", Content: "second"},
		{Content: "third", Metadata: schema.Metadata{"lang": "en"}},
	}

	out := svc.AddDocuments(context.Background(), input)
	require.True(t, out.Success, out.Message)
	require.Len(t, out.DocumentIDs, 3)
	assert.NotEmpty(t, out.DocumentIDs[0])
	assert.Equal(t, "fixed-id", out.DocumentIDs[1])
	assert.NotEmpty(t, out.DocumentIDs[2])
	assert.NotEqual(t, out.DocumentIDs[0], out.DocumentIDs[2])
	// 输入不被修改
	assert.Empty(t, input[0].ID)
}

func TestAddThenSearch(t *testing.T) {
	svc, r, _ := newService(t)

	out := svc.AddDocuments(context.Background(), docs("A", "B"))
	require.True(t, out.Success)
	require.Len(t, out.DocumentIDs, 2)

	results, err := r.Retrieve(context.Background(), "A", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "A", results[0].Content)
	assert.Equal(t, out.DocumentIDs[0], results[0].ID)
}

func TestAddDocumentsFailures(t *testing.T) {
	svc, _, _ := newService(t)

	out := svc.AddDocuments(context.Background(), docs("ok", "poison"))
	assert.False(t, out.Success)
	assert.Nil(t, out.DocumentIDs)
	assert.Contains(t, out.Message, "simulated store failure")

	out = svc.AddDocuments(context.Background(), []schema.Document{{Content: "x", Metadata: schema.Metadata{"": 1}}})
	assert.False(t, out.Success)

	out = svc.AddDocuments(context.Background(), docs("  "))
	assert.False(t, out.Success)

	out = svc.AddDocuments(context.Background(), nil)
	assert.False(t, out.Success)
}

func TestAddDocumentsRepeatedIDKeepsLastContent(t *testing.T) {
	input := []schema.Document{
		{ID: "same", Content: "alpha one"},
		{ID: "other", Content: "unrelated text"},
		{ID: "same", Content: "beta two"},
		{ID: "same", Content: "gamma three"},
		{ID: "same", Content: "delta four", Title: "last"},
	}
	// 重复执行以暴露并发写入时的不确定性
	for i := 0; i < 20; i++ {
		svc, _, store := newService(t)
		out := svc.AddDocuments(context.Background(), input)
		require.True(t, out.Success, out.Message)
		assert.Equal(t, []string{"same", "other"}, out.DocumentIDs)

		require.Len(t, store.last, 2)
		assert.Equal(t, "delta four", store.last[0].Content)
		assert.Equal(t, "last", store.last[0].Title)

		stats, err := store.Stats(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(2), stats.DocumentCount)

		results, err := store.SearchSimilar(context.Background(), store.last[0].Embedding, 2)
		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.Equal(t, "same", results[0].ID)
		assert.Equal(t, "delta four", results[0].Content)
	}
}

func TestAddDocumentsRejectsOversizedTitleAndSource(t *testing.T) {
	svc, _, store := newService(t)
	long := strings.Repeat("x", vector_store.MaxTextLen+1)

	out := svc.AddDocuments(context.Background(), []schema.Document{{Content: "a", Title: long}})
	assert.False(t, out.Success)
	assert.Contains(t, out.Message, "at most")

	out = svc.AddDocuments(context.Background(), []schema.Document{{Content: "a", Source: long}})
	assert.False(t, out.Success)
	assert.Equal(t, 0, store.upserts)

	out = svc.AddDocuments(context.Background(), []schema.Document{{Content: "a", Title: long[1:], Source: long[1:]}})
	assert.True(t, out.Success, out.Message)
}

func TestBatchProcessChunkAccounting(t *testing.T) {
	tests := []struct {
		name          string
		contents      []string
		chunkSize     int
		wantProcessed int
		wantFailed    int
		wantUpserts   int
	}{
		{name: "exact multiple", contents: []string{"a", "b", "c", "d"}, chunkSize: 2, wantProcessed: 4, wantUpserts: 2},
		{name: "remainder chunk", contents: []string{"a", "b", "c", "d", "e"}, chunkSize: 2, wantProcessed: 5, wantUpserts: 3},
		{name: "failing middle chunk", contents: []string{"a", "b", "poison", "d", "e"}, chunkSize: 2, wantProcessed: 3, wantFailed: 2, wantUpserts: 3},
		{name: "chunk larger than input", contents: []string{"a", "poison"}, chunkSize: 100, wantFailed: 2, wantUpserts: 1},
		{name: "empty input", contents: nil, chunkSize: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, store := newService(t)
			out, err := svc.BatchProcess(context.Background(), docs(tt.contents...), tt.chunkSize)
			require.NoError(t, err)
			assert.True(t, out.Success)
			assert.Equal(t, len(tt.contents), out.TotalDocuments)
			assert.Equal(t, tt.wantProcessed, out.ProcessedDocuments)
			assert.Equal(t, tt.wantFailed, out.FailedDocuments)
			assert.Equal(t, out.TotalDocuments, out.ProcessedDocuments+out.FailedDocuments)
			assert.Equal(t, tt.wantUpserts, store.upserts)
			assert.Contains(t, out.Message, fmt.Sprintf("%d succeeded", tt.wantProcessed))
		})
	}
}

func TestBatchProcessFailedChunkIsNotPersisted(t *testing.T) {
	svc, _, store := newService(t)
	_, err := svc.BatchProcess(context.Background(), docs("a", "poison", "c"), 2)
	require.NoError(t, err)

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.DocumentCount)
}

func TestBatchProcessRejectsChunkSize(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.BatchProcess(context.Background(), docs("a"), 0)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestDeleteDocument(t *testing.T) {
	svc, _, store := newService(t)
	out := svc.AddDocuments(context.Background(), docs("keep"))
	require.True(t, out.Success)

	del := svc.DeleteDocument(context.Background(), "does-not-exist")
	assert.True(t, del.Success)
	stats, _ := store.Stats(context.Background())
	assert.Equal(t, int64(1), stats.DocumentCount)

	del = svc.DeleteDocument(context.Background(), out.DocumentIDs[0])
	assert.True(t, del.Success)
	stats, _ = store.Stats(context.Background())
	assert.Equal(t, int64(0), stats.DocumentCount)

	del = svc.DeleteDocument(context.Background(), "")
	assert.False(t, del.Success)
}
