package embedding

import (
	"context"
	"time"
	"unicode/utf8"

	coreEmbedding "github.com/Malowking/kbrag/core/embedding"
	"github.com/Malowking/kbrag/core/errors"
	"github.com/Malowking/kbrag/core/model"
	"github.com/Malowking/kbrag/internal/metrics"
	"github.com/gogf/gf/v2/frame/g"
)

// MaxBatchTexts 批量向量化的最大文本数
const MaxBatchTexts = 100

// ModelInfo 向量化模型信息
type ModelInfo struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`
	IsLoaded  bool   `json:"is_loaded"`
}

// Result 单条文本的向量化结果
type Result struct {
	Embedding          []float32
	TextLength         int
	EmbeddingDimension int
	ProcessingTime     float64
	ModelInfo          ModelInfo
}

// BatchResult 批量向量化结果
type BatchResult struct {
	Embeddings         [][]float32
	TextCount          int
	EmbeddingDimension int
	ProcessingTime     float64
	ModelInfo          ModelInfo
}

// Status 向量化服务状态
type Status struct {
	IsLoaded      bool
	ModelInfo     ModelInfo
	ServiceStatus string
}

// Service 直接暴露 embedding 网关
type Service struct {
	handles *model.Handles
	metrics *metrics.Metrics
}

func New(handles *model.Handles) *Service {
	return &Service{handles: handles, metrics: metrics.New()}
}

// Embed 向量化单条文本
func (s *Service) Embed(ctx context.Context, text string) (*Result, error) {
	start := time.Now()
	if err := validate([]string{text}); err != nil {
		return nil, err
	}
	embedder, err := s.handles.Embedder()
	if err != nil {
		return nil, err
	}

	vector, err := coreEmbedding.Embed(ctx, embedder, text)
	if err != nil {
		g.Log().Errorf(ctx, "Failed to generate embedding: %v (time: %.3fs)", err, time.Since(start).Seconds())
		return nil, err
	}
	s.metrics.EmbeddingTexts.Inc()

	elapsed := time.Since(start).Seconds()
	g.Log().Infof(ctx, "Generated embedding for text (length: %d, time: %.3fs)", utf8.RuneCountInString(text), elapsed)
	return &Result{
		Embedding:          vector,
		TextLength:         utf8.RuneCountInString(text),
		EmbeddingDimension: len(vector),
		ProcessingTime:     elapsed,
		ModelInfo:          infoOf(embedder),
	}, nil
}

// EmbedBatch 按输入顺序向量化多条文本
func (s *Service) EmbedBatch(ctx context.Context, texts []string) (*BatchResult, error) {
	start := time.Now()
	if len(texts) > MaxBatchTexts {
		return nil, errors.Newf(errors.ErrInvalidParameter, "too many texts: %d, limit is %d", len(texts), MaxBatchTexts)
	}
	if err := validate(texts); err != nil {
		return nil, err
	}
	embedder, err := s.handles.Embedder()
	if err != nil {
		return nil, err
	}

	vectors, err := embedder.EmbedStrings(ctx, texts)
	if err != nil {
		g.Log().Errorf(ctx, "Failed to generate embeddings: %v (time: %.3fs)", err, time.Since(start).Seconds())
		return nil, err
	}
	s.metrics.EmbeddingTexts.Add(float64(len(texts)))

	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}
	elapsed := time.Since(start).Seconds()
	g.Log().Infof(ctx, "Generated embeddings for %d texts (time: %.3fs)", len(texts), elapsed)
	return &BatchResult{
		Embeddings:         vectors,
		TextCount:          len(texts),
		EmbeddingDimension: dim,
		ProcessingTime:     elapsed,
		ModelInfo:          infoOf(embedder),
	}, nil
}

// Status 当前模型加载状态
func (s *Service) Status() *Status {
	status := &Status{ServiceStatus: "running"}
	if embedder, err := s.handles.Embedder(); err == nil {
		status.IsLoaded = true
		status.ModelInfo = infoOf(embedder)
	}
	return status
}

// validate 入参错误归为参数错误，与网关内部的 EmbeddingError 区分
func validate(texts []string) error {
	if err := coreEmbedding.ValidateTexts(texts); err != nil {
		appErr := errors.GetAppError(err)
		return errors.New(errors.ErrInvalidParameter, appErr.Message)
	}
	return nil
}

func infoOf(e coreEmbedding.Embedder) ModelInfo {
	return ModelInfo{Name: e.Model(), Dimension: e.Dimension(), IsLoaded: true}
}
