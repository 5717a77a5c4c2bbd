package rerank

import (
	"context"
	"strings"

	"github.com/Malowking/kbrag/core/errors"
)

const (
	ProviderHTTP = "http"
	ProviderBM25 = "bm25"
)

// Scorer 不透明的 (query, document) 相关性打分器
type Scorer interface {
	// Score 返回与 documents 一一对应的相关性分数，越大越相关
	Score(ctx context.Context, query string, documents []string) ([]float64, error)
	Model() string
}

// Config rerank 配置
type Config struct {
	Provider   string `json:"provider"`
	BaseURL    string `json:"baseURL"`
	APIKey     string `json:"apiKey"`
	Model      string `json:"model"`
	TimeoutSec int    `json:"timeoutSec"`
	// Concurrency 批量重排时并发处理的 query 数
	Concurrency int `json:"concurrency"`
	// SubChunkSize 长文档滑窗切分的字符数，0 表示不切分
	SubChunkSize int `json:"subChunkSize"`
	// SubChunkOverlap 滑窗重叠字符数
	SubChunkOverlap int `json:"subChunkOverlap"`
	// Aggregate 子切片分数聚合方式: max / mean
	Aggregate string `json:"aggregate"`
}

// New 按 provider 创建打分器
func New(cfg Config) (Scorer, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderHTTP:
		return NewHTTPScorer(cfg)
	case "", ProviderBM25:
		return NewBM25Scorer(DefaultBM25Parameters()), nil
	default:
		return nil, errors.Newf(errors.ErrModelConfigInvalid, "unsupported rerank provider: %s", cfg.Provider)
	}
}
