package retriever

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Malowking/kbrag/core/common"
	"github.com/Malowking/kbrag/core/embedding"
	"github.com/Malowking/kbrag/core/errors"
	"github.com/Malowking/kbrag/core/model"
	"github.com/Malowking/kbrag/core/vector_store"
	"github.com/Malowking/kbrag/internal/metrics"
	"github.com/Malowking/kbrag/pkg/schema"
	"github.com/gogf/gf/v2/frame/g"
)

// SearchOutcome 检索接口的返回结构，失败时 Success 为 false
type SearchOutcome struct {
	Success    bool
	Documents  []schema.SearchResult
	Query      string
	TotalFound int
	Message    string
}

// Service 检索服务：向量化查询后做相似度检索，不做缓存
type Service struct {
	handles *model.Handles
	store   vector_store.Store
	metrics *metrics.Metrics
}

func New(handles *model.Handles, store vector_store.Store) *Service {
	return &Service{
		handles: handles,
		store:   store,
		metrics: metrics.New(),
	}
}

// Retrieve 返回按得分降序排列的最多 limit 条结果，没有结果时返回空列表
func (s *Service) Retrieve(ctx context.Context, query string, limit int) ([]schema.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New(errors.ErrInvalidParameter, "query must not be empty")
	}
	if limit < 1 {
		return nil, errors.Newf(errors.ErrInvalidParameter, "limit must be at least 1, got %d", limit)
	}

	embedder, err := s.handles.Embedder()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer metrics.ObserveSince(s.metrics.RetrievalDuration, start)

	vector, err := embedding.Embed(ctx, embedder, common.NormalizeForEmbedding(query))
	if err != nil {
		g.Log().Errorf(ctx, "Query embedding failed: %v", err)
		return nil, err
	}

	results, err := s.store.SearchSimilar(ctx, vector, limit)
	if err != nil {
		return nil, err
	}
	schema.SortByScore(results)
	s.metrics.RetrievedResults.Observe(float64(len(results)))

	g.Log().Debugf(ctx, "Retrieved %d documents for query (limit %d)", len(results), limit)
	return results, nil
}

// Search 检索并转换为对外结果，不向调用方抛出错误
func (s *Service) Search(ctx context.Context, query string, limit int) *SearchOutcome {
	results, err := s.Retrieve(ctx, query, limit)
	if err != nil {
		g.Log().Errorf(ctx, "Document search failed: %v", err)
		return &SearchOutcome{
			Success:   false,
			Documents: []schema.SearchResult{},
			Query:     query,
			Message:   fmt.Sprintf("An error occurred while searching documents: %v", err),
		}
	}
	return &SearchOutcome{
		Success:    true,
		Documents:  results,
		Query:      query,
		TotalFound: len(results),
	}
}
