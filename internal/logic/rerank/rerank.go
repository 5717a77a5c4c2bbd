package rerank

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Malowking/kbrag/core/common"
	"github.com/Malowking/kbrag/core/errors"
	"github.com/Malowking/kbrag/core/model"
	coreRerank "github.com/Malowking/kbrag/core/rerank"
	"github.com/Malowking/kbrag/internal/metrics"
	"github.com/Malowking/kbrag/pkg/schema"
	"github.com/gogf/gf/v2/frame/g"
	"golang.org/x/sync/errgroup"
)

const (
	MaxQueryLength    = 5000
	MaxDocumentLength = 10000
	MaxDocuments      = 100
	MaxQueries        = 10

	defaultConcurrency = 4

	modeSingle = "single"
	modeBatch  = "batch"
)

// ModelInfo 重排序模型信息
type ModelInfo struct {
	Name     string `json:"name"`
	IsLoaded bool   `json:"is_loaded"`
}

// Response 单个查询的重排序结果
type Response struct {
	Query          string
	TotalDocuments int
	Results        []schema.RerankResult
	TopK           *int
	// ProcessingTime 处理耗时（秒）
	ProcessingTime float64
	ModelInfo      ModelInfo
}

// QueryResult 批量重排序中单个查询的结果
type QueryResult struct {
	Query   string                `json:"query"`
	Results []schema.RerankResult `json:"results"`
}

// BatchResponse 批量重排序结果，BatchResults 与输入查询顺序一致
type BatchResponse struct {
	TotalQueries   int
	TotalDocuments int
	BatchResults   []QueryResult
	TopK           *int
	ProcessingTime float64
	ModelInfo      ModelInfo
}

// Status 重排序服务状态
type Status struct {
	IsLoaded      bool
	ModelInfo     ModelInfo
	ServiceStatus string
}

// Service 重排序服务
type Service struct {
	handles     *model.Handles
	concurrency int
	metrics     *metrics.Metrics
}

// New concurrency 为批量重排时同时打分的查询数，<=0 使用默认值
func New(handles *model.Handles, concurrency int) *Service {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Service{
		handles:     handles,
		concurrency: concurrency,
		metrics:     metrics.New(),
	}
}

// Rerank 对文档按与 query 的相关性降序排列，topK 为空时返回全部
func (s *Service) Rerank(ctx context.Context, query string, documents []string, topK *int) (*Response, error) {
	start := time.Now()
	if err := validateQuery(query); err != nil {
		return nil, err
	}
	if err := validateDocuments(documents); err != nil {
		return nil, err
	}
	if err := validateTopK(topK, len(documents)); err != nil {
		return nil, err
	}

	scorer, err := s.handles.Scorer()
	if err != nil {
		return nil, err
	}

	results, err := rank(ctx, scorer, query, documents, topK)
	s.metrics.RerankRequests.WithLabelValues(modeSingle, metrics.Result(err == nil)).Inc()
	if err != nil {
		g.Log().Errorf(ctx, "Failed to rerank documents: %v (time: %.3fs)", err, time.Since(start).Seconds())
		return nil, err
	}
	elapsed := time.Since(start)
	s.metrics.RerankDuration.WithLabelValues(modeSingle).Observe(elapsed.Seconds())

	g.Log().Infof(ctx, "Reranked %d documents for query (time: %.3fs)", len(documents), elapsed.Seconds())
	return &Response{
		Query:          query,
		TotalDocuments: len(documents),
		Results:        results,
		TopK:           topK,
		ProcessingTime: elapsed.Seconds(),
		ModelInfo:      ModelInfo{Name: scorer.Model(), IsLoaded: true},
	}, nil
}

// RerankBatch 对每个查询独立重排同一组文档
//
// 所有输入在打分前整体校验；任一查询打分失败则整个批次失败。
func (s *Service) RerankBatch(ctx context.Context, queries []string, documents []string, topK *int) (*BatchResponse, error) {
	start := time.Now()
	if len(queries) == 0 {
		return nil, errors.New(errors.ErrInvalidParameter, "queries must not be empty")
	}
	if len(queries) > MaxQueries {
		return nil, errors.Newf(errors.ErrInvalidParameter, "too many queries in batch: %d, limit is %d", len(queries), MaxQueries)
	}
	for i, q := range queries {
		if err := validateQuery(q); err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidParameter, "query %d", i)
		}
	}
	if err := validateDocuments(documents); err != nil {
		return nil, err
	}
	if err := validateTopK(topK, len(documents)); err != nil {
		return nil, err
	}

	scorer, err := s.handles.Scorer()
	if err != nil {
		return nil, err
	}

	batch := make([]QueryResult, len(queries))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.concurrency)
	for i, q := range queries {
		eg.Go(common.Guard(ctx, "rerank-batch-query", func() error {
			results, err := rank(egCtx, scorer, q, documents, topK)
			if err != nil {
				return errors.Wrapf(err, errors.ErrRerankFailed, "query %d", i)
			}
			batch[i] = QueryResult{Query: q, Results: results}
			return nil
		}))
	}
	err = eg.Wait()
	s.metrics.RerankRequests.WithLabelValues(modeBatch, metrics.Result(err == nil)).Inc()
	if err != nil {
		g.Log().Errorf(ctx, "Failed to batch rerank: %v (time: %.3fs)", err, time.Since(start).Seconds())
		return nil, err
	}
	elapsed := time.Since(start)
	s.metrics.RerankDuration.WithLabelValues(modeBatch).Observe(elapsed.Seconds())

	g.Log().Infof(ctx, "Batch reranked %d documents for %d queries (time: %.3fs)", len(documents), len(queries), elapsed.Seconds())
	return &BatchResponse{
		TotalQueries:   len(queries),
		TotalDocuments: len(documents),
		BatchResults:   batch,
		TopK:           topK,
		ProcessingTime: elapsed.Seconds(),
		ModelInfo:      ModelInfo{Name: scorer.Model(), IsLoaded: true},
	}, nil
}

// Status 当前模型加载状态
func (s *Service) Status() *Status {
	status := &Status{ServiceStatus: "running"}
	if scorer, err := s.handles.Scorer(); err == nil {
		status.IsLoaded = true
		status.ModelInfo = ModelInfo{Name: scorer.Model(), IsLoaded: true}
	}
	return status
}

// rank 打分、稳定排序、分配名次后按 topK 截断
func rank(ctx context.Context, scorer coreRerank.Scorer, query string, documents []string, topK *int) ([]schema.RerankResult, error) {
	scores, err := scorer.Score(ctx, query, documents)
	if err != nil {
		if errors.IsRerank(err) {
			return nil, err
		}
		return nil, errors.Wrapf(err, errors.ErrRerankFailed, "reranking failed")
	}
	if len(scores) != len(documents) {
		return nil, errors.Newf(errors.ErrRerankFailed, "scorer returned %d scores for %d documents", len(scores), len(documents))
	}

	results := make([]schema.RerankResult, len(documents))
	for i, doc := range documents {
		results[i] = schema.RerankResult{
			DocumentIndex:  i,
			Document:       doc,
			RelevanceScore: scores[i],
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})
	for i := range results {
		results[i].Rank = i + 1
	}
	if topK != nil && *topK < len(results) {
		results = results[:*topK]
	}
	return results, nil
}

func validateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return errors.New(errors.ErrInvalidParameter, "invalid query: must not be empty")
	}
	if n := utf8.RuneCountInString(query); n > MaxQueryLength {
		return errors.Newf(errors.ErrInvalidParameter, "invalid query: %d characters, limit is %d", n, MaxQueryLength)
	}
	return nil
}

func validateDocuments(documents []string) error {
	if len(documents) == 0 {
		return errors.New(errors.ErrInvalidParameter, "invalid documents: list must not be empty")
	}
	if len(documents) > MaxDocuments {
		return errors.Newf(errors.ErrInvalidParameter, "invalid documents: %d documents, limit is %d", len(documents), MaxDocuments)
	}
	for i, doc := range documents {
		if strings.TrimSpace(doc) == "" {
			return errors.Newf(errors.ErrInvalidParameter, "invalid documents: document %d is empty", i)
		}
		if n := utf8.RuneCountInString(doc); n > MaxDocumentLength {
			return errors.Newf(errors.ErrInvalidParameter, "invalid documents: document %d has %d characters, limit is %d", i, n, MaxDocumentLength)
		}
	}
	return nil
}

func validateTopK(topK *int, count int) error {
	if topK == nil {
		return nil
	}
	if *topK < 1 || *topK > count {
		return errors.Newf(errors.ErrInvalidParameter, "invalid top_k parameter: %d, must be between 1 and %d", *topK, count)
	}
	return nil
}
