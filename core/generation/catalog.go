package generation

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/Malowking/kbrag/core/errors"
	goopenai "github.com/sashabaranov/go-openai"
)

// ModelInfo 模型信息
type ModelInfo struct {
	Name      string `json:"name"`
	OwnedBy   string `json:"owned_by"`
	CreatedAt int64  `json:"created_at"`
}

// Catalog 通过 OpenAI 兼容的 /models 接口查询可用模型
type Catalog struct {
	client  *goopenai.Client
	current string
}

// NewCatalog 复用 chat 配置创建模型目录
func NewCatalog(cfg Config) *Catalog {
	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &Catalog{
		client:  goopenai.NewClientWithConfig(clientCfg),
		current: cfg.Model,
	}
}

// Current 当前使用的 chat 模型
func (c *Catalog) Current() string { return c.current }

// List 列出可用模型名称
func (c *Catalog) List(ctx context.Context) ([]ModelInfo, error) {
	resp, err := c.client.ListModels(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrLLMCallFailed, "failed to list models")
	}
	models := make([]ModelInfo, 0, len(resp.Models))
	for _, m := range resp.Models {
		models = append(models, ModelInfo{Name: m.ID, OwnedBy: m.OwnedBy, CreatedAt: m.CreatedAt})
	}
	return models, nil
}

// Describe 查询单个模型，name 为空时查询当前模型
func (c *Catalog) Describe(ctx context.Context, name string) (ModelInfo, error) {
	if name == "" {
		name = c.current
	}
	m, err := c.client.GetModel(ctx, name)
	if err != nil {
		var apiErr *goopenai.APIError
		if stderrors.As(err, &apiErr) && apiErr.HTTPStatusCode == 404 {
			return ModelInfo{}, errors.Newf(errors.ErrModelNotFound, "model not found: %s", name)
		}
		return ModelInfo{}, errors.Wrapf(err, errors.ErrLLMCallFailed, "failed to describe model %s", name)
	}
	return ModelInfo{Name: m.ID, OwnedBy: m.OwnedBy, CreatedAt: m.CreatedAt}, nil
}
