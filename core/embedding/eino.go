package embedding

import (
	"context"

	"github.com/Malowking/kbrag/core/errors"
	"github.com/cloudwego/eino-ext/components/embedding/openai"
)

// EinoEmbedder 基于 eino-ext openai embedder 的实现
type EinoEmbedder struct {
	embedder  *openai.Embedder
	model     string
	dimension int
}

// NewEinoEmbedder 创建 eino embedder
func NewEinoEmbedder(ctx context.Context, cfg Config) (*EinoEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New(errors.ErrModelConfigInvalid, "embedding apiKey is required")
	}
	if cfg.Model == "" {
		return nil, errors.New(errors.ErrModelConfigInvalid, "embedding model is required")
	}

	dimensions := cfg.Dimension
	emb, err := openai.NewEmbedder(ctx, &openai.EmbeddingConfig{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: &dimensions,
		Timeout:    cfg.timeout(),
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrModelConfigInvalid, "failed to create embedder")
	}
	return &EinoEmbedder{embedder: emb, model: cfg.Model, dimension: cfg.Dimension}, nil
}

func (e *EinoEmbedder) Dimension() int { return e.dimension }
func (e *EinoEmbedder) Model() string  { return e.model }

func (e *EinoEmbedder) EmbedStrings(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ValidateTexts(texts); err != nil {
		return nil, err
	}
	vectors, err := e.embedder.EmbedStrings(ctx, texts)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrEmbeddingFailed, "embedding request failed")
	}
	result := make([][]float32, len(vectors))
	for i, v := range vectors {
		result[i] = toFloat32(v)
	}
	if err := checkVectors(result, len(texts), e.dimension); err != nil {
		return nil, err
	}
	return result, nil
}
