package cmd

import (
	"context"

	"github.com/Malowking/kbrag/core/config"
	"github.com/Malowking/kbrag/core/model"
	"github.com/Malowking/kbrag/core/vector_store"
	"github.com/Malowking/kbrag/internal/service"
	"github.com/gogf/gf/v2/frame/g"
)

// Bootstrap 读取并校验配置，连接向量库并加载模型
func Bootstrap(ctx context.Context) (*service.Services, error) {
	g.Log().Info(ctx, "Validating application configuration...")
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err = cfg.Validate(ctx); err != nil {
		return nil, err
	}
	return Assemble(ctx, cfg)
}

// Assemble 按配置构建向量库和模型句柄，模型加载失败时关闭已打开的向量库
func Assemble(ctx context.Context, cfg *config.Config) (*service.Services, error) {
	store, err := vector_store.NewStore(ctx, cfg.VectorStore)
	if err != nil {
		return nil, err
	}
	g.Log().Infof(ctx, "Vector store initialized - type: %s, collection: %s", cfg.VectorStore.Type, cfg.VectorStore.Collection)

	handles := model.NewHandles(cfg.Models)
	if err = handles.Load(ctx); err != nil {
		if closeErr := store.Close(ctx); closeErr != nil {
			g.Log().Warningf(ctx, "Failed to close vector store: %v", closeErr)
		}
		return nil, err
	}
	for t, name := range handles.Names() {
		g.Log().Infof(ctx, "Model loaded - type: %s, name: %s", t, name)
	}

	svcs := service.New(handles, store, cfg.Models.Rerank.Concurrency)
	g.Log().Info(ctx, "✓ All components initialized successfully")
	return svcs, nil
}
