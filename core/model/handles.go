package model

import (
	"context"
	"sync"
	"time"

	"github.com/Malowking/kbrag/core/embedding"
	"github.com/Malowking/kbrag/core/errors"
	"github.com/Malowking/kbrag/core/generation"
	"github.com/Malowking/kbrag/core/rerank"
	"github.com/gogf/gf/v2/frame/g"
)

// ModelType 模型类型
type ModelType string

const (
	ModelTypeLLM       ModelType = "llm"       // 大语言模型
	ModelTypeEmbedding ModelType = "embedding" // 向量化模型
	ModelTypeReranker  ModelType = "reranker"  // 重排序模型
)

// Config 进程内所有模型句柄的配置
type Config struct {
	Embedding embedding.Config
	Chat      generation.Config
	Rerank    rerank.Config
}

// Handles 进程级模型句柄，由启动流程构建并注入各服务
//
// Load 只执行一次；Close 之后访问器返回 ErrModelNotLoaded。
type Handles struct {
	cfg  Config
	once sync.Once

	mu        sync.RWMutex
	loadErr   error
	embedder  embedding.Embedder
	generator generation.Generator
	scorer    rerank.Scorer
	catalog   *generation.Catalog
}

// NewHandles 创建尚未加载的句柄
func NewHandles(cfg Config) *Handles {
	return &Handles{cfg: cfg}
}

// NewLoadedHandles 使用已构建好的组件创建句柄，nil 组件视为未加载
func NewLoadedHandles(cfg Config, e embedding.Embedder, gen generation.Generator, s rerank.Scorer, c *generation.Catalog) *Handles {
	h := &Handles{
		cfg:       cfg,
		embedder:  e,
		generator: gen,
		scorer:    s,
		catalog:   c,
	}
	h.once.Do(func() {})
	return h
}

// Load 按配置初始化全部模型，重复调用返回首次结果
func (h *Handles) Load(ctx context.Context) error {
	h.once.Do(func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.loadErr = h.load(ctx)
	})
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.loadErr
}

func (h *Handles) load(ctx context.Context) error {
	emb, err := embedding.New(ctx, h.cfg.Embedding)
	if err != nil {
		return errors.Wrapf(err, errors.ErrModelConfigInvalid, "failed to load embedding model")
	}
	g.Log().Infof(ctx, "Embedding model loaded: %s (dimension %d)", emb.Model(), emb.Dimension())

	gen, err := generation.New(ctx, h.cfg.Chat)
	if err != nil {
		return errors.Wrapf(err, errors.ErrModelConfigInvalid, "failed to load chat model")
	}
	g.Log().Infof(ctx, "Chat model loaded: %s", gen.Model())

	scorer, err := rerank.New(h.cfg.Rerank)
	if err != nil {
		return errors.Wrapf(err, errors.ErrModelConfigInvalid, "failed to load rerank model")
	}
	g.Log().Infof(ctx, "Rerank model loaded: %s", scorer.Model())

	h.embedder = emb
	h.generator = gen
	h.scorer = scorer
	h.catalog = generation.NewCatalog(h.cfg.Chat)
	return nil
}

// Close 释放句柄，之后的访问返回 ErrModelNotLoaded
func (h *Handles) Close(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.embedder = nil
	h.generator = nil
	h.scorer = nil
	h.catalog = nil
	g.Log().Info(ctx, "Model handles released")
}

func notLoaded(t ModelType) error {
	return errors.Newf(errors.ErrModelNotLoaded, "%s model is not loaded", t)
}

// Embedder 向量化模型
func (h *Handles) Embedder() (embedding.Embedder, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.embedder == nil {
		return nil, notLoaded(ModelTypeEmbedding)
	}
	return h.embedder, nil
}

// Generator 生成模型
func (h *Handles) Generator() (generation.Generator, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.generator == nil {
		return nil, notLoaded(ModelTypeLLM)
	}
	return h.generator, nil
}

// Scorer 重排序模型
func (h *Handles) Scorer() (rerank.Scorer, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.scorer == nil {
		return nil, notLoaded(ModelTypeReranker)
	}
	return h.scorer, nil
}

// Catalog 可用模型目录
func (h *Handles) Catalog() (*generation.Catalog, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.catalog == nil {
		return nil, notLoaded(ModelTypeLLM)
	}
	return h.catalog, nil
}

// Names 已加载模型的名称，未加载的类型不出现
func (h *Handles) Names() map[ModelType]string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make(map[ModelType]string, 3)
	if h.embedder != nil {
		names[ModelTypeEmbedding] = h.embedder.Model()
	}
	if h.generator != nil {
		names[ModelTypeLLM] = h.generator.Model()
	}
	if h.scorer != nil {
		names[ModelTypeReranker] = h.scorer.Model()
	}
	return names
}

// RetryConfig 生成调用的重试参数
func (h *Handles) RetryConfig() *RetryConfig {
	cfg := DefaultRetryConfig()
	if h.cfg.Chat.MaxRetries > 0 {
		cfg.MaxRetries = h.cfg.Chat.MaxRetries
	}
	if h.cfg.Chat.RetryDelayMs > 0 {
		cfg.RetryDelay = time.Duration(h.cfg.Chat.RetryDelayMs) * time.Millisecond
	}
	return cfg
}
