package embedding

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Malowking/kbrag/core/errors"
)

const (
	// MaxTextLength 单条文本的最大字符数
	MaxTextLength = 10000

	ProviderHTTP   = "http"
	ProviderOpenAI = "openai"
)

// Embedder 文本向量化网关，同一模型版本下结果确定
type Embedder interface {
	// EmbedStrings 按输入顺序返回每条文本的向量
	EmbedStrings(ctx context.Context, texts []string) ([][]float32, error)
	// Dimension 向量维度
	Dimension() int
	// Model 模型名称
	Model() string
}

// Config embedding 配置
type Config struct {
	Provider  string        `json:"provider"`
	BaseURL   string        `json:"baseURL"`
	APIKey    string        `json:"apiKey"`
	Model     string        `json:"model"`
	Dimension int           `json:"dimension"`
	// TimeoutSec 单次请求超时（秒），0 使用默认值
	TimeoutSec int `json:"timeoutSec"`
}

func (c Config) timeout() time.Duration {
	if c.TimeoutSec <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(c.TimeoutSec) * time.Second
}

// New 按 provider 创建 Embedder
func New(ctx context.Context, cfg Config) (Embedder, error) {
	if cfg.Dimension <= 0 {
		return nil, errors.Newf(errors.ErrModelConfigInvalid, "embedding dimension must be positive, got %d", cfg.Dimension)
	}
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderHTTP:
		return NewHTTPEmbedder(cfg)
	case ProviderOpenAI:
		return NewEinoEmbedder(ctx, cfg)
	default:
		return nil, errors.Newf(errors.ErrModelConfigInvalid, "unsupported embedding provider: %s", cfg.Provider)
	}
}

// Embed 向量化单条文本
func Embed(ctx context.Context, e Embedder, text string) ([]float32, error) {
	vectors, err := e.EmbedStrings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// ValidateTexts 校验待向量化文本
func ValidateTexts(texts []string) error {
	if len(texts) == 0 {
		return errors.New(errors.ErrEmbeddingFailed, "no texts to embed")
	}
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			return errors.Newf(errors.ErrEmbeddingFailed, "text %d is empty", i)
		}
		if n := utf8.RuneCountInString(t); n > MaxTextLength {
			return errors.Newf(errors.ErrEmbeddingFailed, "text %d has %d characters, limit is %d", i, n, MaxTextLength)
		}
	}
	return nil
}

// checkVectors 校验返回的向量数量与维度
func checkVectors(vectors [][]float32, want, dim int) error {
	if len(vectors) != want {
		return errors.Newf(errors.ErrEmbeddingFailed, "response data length (%d) doesn't match input length (%d)", len(vectors), want)
	}
	for i, v := range vectors {
		if len(v) != dim {
			return errors.Newf(errors.ErrEmbeddingFailed, "embedding %d has dimension %d, expected %d", i, len(v), dim)
		}
	}
	return nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
