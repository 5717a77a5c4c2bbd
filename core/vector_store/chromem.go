package vector_store

import (
	"context"
	stderrors "errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Malowking/kbrag/core/errors"
	"github.com/Malowking/kbrag/pkg/schema"
	"github.com/gogf/gf/v2/frame/g"
	"github.com/philippgille/chromem-go"
)

// ChromemStore 基于 chromem-go 的嵌入式向量库，适合单机部署与测试
type ChromemStore struct {
	mu         sync.RWMutex
	db         *chromem.DB
	collection *chromem.Collection
	name       string
	dim        int
}

var errEmbeddingRequired = stderrors.New("documents must carry precomputed embeddings")

// 所有写入都携带向量，embedding 函数不应被调用
func noEmbedding(context.Context, string) ([]float32, error) {
	return nil, errEmbeddingRequired
}

// NewChromemStore 打开（或创建）chromem 集合，Path 为空时仅在内存中
func NewChromemStore(ctx context.Context, cfg Config) (*ChromemStore, error) {
	var (
		db  *chromem.DB
		err error
	)
	if cfg.Chromem.Path == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(cfg.Chromem.Path, cfg.Chromem.Compress)
		if err != nil {
			return nil, fmt.Errorf("failed to open chromem db at %s: %w", cfg.Chromem.Path, err)
		}
	}

	coll, err := db.GetOrCreateCollection(cfg.Collection, map[string]string{"dimension": fmt.Sprint(cfg.Dimension)}, noEmbedding)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create collection %s: %w", cfg.Collection, err)
	}

	g.Log().Infof(ctx, "Chromem collection '%s' opened with %d documents", cfg.Collection, coll.Count())
	return &ChromemStore{
		db:         db,
		collection: coll,
		name:       cfg.Collection,
		dim:        cfg.Dimension,
	}, nil
}

// Upsert 写入文档，同 ID 覆盖
func (s *ChromemStore) Upsert(ctx context.Context, docs []schema.Document) (bool, error) {
	if len(docs) == 0 {
		return true, nil
	}
	if err := checkDocs(docs, s.dim); err != nil {
		g.Log().Errorf(ctx, "Chromem upsert rejected: %v", err)
		return false, errors.Wrapf(err, errors.ErrVectorInsert, "invalid documents")
	}

	chromemDocs := make([]chromem.Document, 0, len(docs))
	for _, doc := range docs {
		meta, err := schema.EncodeMetadata(doc.Metadata)
		if err != nil {
			g.Log().Errorf(ctx, "Chromem upsert rejected: document %s: %v", doc.ID, err)
			return false, errors.Wrapf(err, errors.ErrMetadataInvalid, "document %s", doc.ID)
		}
		embedding := make([]float32, len(doc.Embedding))
		copy(embedding, doc.Embedding)
		chromemDocs = append(chromemDocs, chromem.Document{
			ID:      doc.ID,
			Content: doc.Content,
			Metadata: map[string]string{
				FieldTitle:    doc.Title,
				FieldSource:   doc.Source,
				FieldMetadata: meta,
			},
			Embedding: embedding,
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.collection.AddDocuments(ctx, chromemDocs, runtime.NumCPU()); err != nil {
		g.Log().Errorf(ctx, "Chromem upsert into '%s' failed: %v", s.name, err)
		return false, errors.Wrapf(err, errors.ErrVectorInsert, "failed to upsert %d documents", len(docs))
	}
	return true, nil
}

// SearchSimilar 余弦相似度检索，集合为空时返回空列表
func (s *ChromemStore) SearchSimilar(ctx context.Context, vector []float32, limit int) ([]schema.SearchResult, error) {
	if limit <= 0 {
		return []schema.SearchResult{}, nil
	}
	if len(vector) != s.dim {
		err := &dimensionError{id: "query", got: len(vector), want: s.dim}
		g.Log().Errorf(ctx, "Chromem search rejected: %v", err)
		return []schema.SearchResult{}, errors.Wrapf(err, errors.ErrVectorSearch, "invalid query vector")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	// chromem 要求 nResults <= 文档数
	count := s.collection.Count()
	if count == 0 {
		return []schema.SearchResult{}, nil
	}
	if limit > count {
		limit = count
	}

	query := make([]float32, len(vector))
	copy(query, vector)
	results, err := s.collection.QueryEmbedding(ctx, query, limit, nil, nil)
	if err != nil {
		g.Log().Errorf(ctx, "Chromem search in '%s' failed: %v", s.name, err)
		return []schema.SearchResult{}, errors.Wrapf(err, errors.ErrVectorSearch, "search failed")
	}

	out := make([]schema.SearchResult, 0, len(results))
	for _, r := range results {
		meta, err := schema.DecodeMetadata(r.Metadata[FieldMetadata])
		if err != nil {
			g.Log().Warningf(ctx, "Ignoring invalid metadata of document %s: %v", r.ID, err)
			meta = schema.Metadata{}
		}
		out = append(out, schema.SearchResult{
			ID:       r.ID,
			Content:  r.Content,
			Title:    r.Metadata[FieldTitle],
			Source:   r.Metadata[FieldSource],
			Metadata: meta,
			Score:    float64(r.Similarity),
		})
	}
	schema.SortByScore(out)
	return out, nil
}

// Delete 按 ID 删除，不存在的 ID 视为成功
func (s *ChromemStore) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.collection.GetByID(ctx, id); err != nil {
		g.Log().Infof(ctx, "No document was deleted for id=%s", id)
		return true, nil
	}
	if err := s.collection.Delete(ctx, nil, nil, id); err != nil {
		g.Log().Errorf(ctx, "Chromem delete of %s failed: %v", id, err)
		return false, errors.Wrapf(err, errors.ErrVectorDelete, "failed to delete document %s", id)
	}
	return true, nil
}

// Stats 集合统计
func (s *ChromemStore) Stats(_ context.Context) (schema.CollectionStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return schema.CollectionStats{Name: s.name, DocumentCount: int64(s.collection.Count())}, nil
}

// Close 内存模式无需释放资源，持久化模式下每次写入已落盘
func (s *ChromemStore) Close(context.Context) error {
	return nil
}
