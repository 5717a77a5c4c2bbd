package service

import (
	"context"

	"github.com/Malowking/kbrag/core/model"
	"github.com/Malowking/kbrag/core/vector_store"
	"github.com/Malowking/kbrag/internal/logic/answer"
	"github.com/Malowking/kbrag/internal/logic/embedding"
	"github.com/Malowking/kbrag/internal/logic/ingest"
	"github.com/Malowking/kbrag/internal/logic/rerank"
	"github.com/Malowking/kbrag/internal/logic/retriever"
	"github.com/Malowking/kbrag/internal/logic/system"
	"github.com/gogf/gf/v2/frame/g"
)

// Services 进程内共享的服务集合，启动时构建一次后注入各控制器
type Services struct {
	Handles   *model.Handles
	Store     vector_store.Store
	Retriever *retriever.Service
	Answer    *answer.Service
	Ingest    *ingest.Service
	Rerank    *rerank.Service
	Embedding *embedding.Service
	System    *system.Service
}

// New 基于已加载的模型句柄和向量库组装服务
func New(handles *model.Handles, store vector_store.Store, rerankConcurrency int) *Services {
	r := retriever.New(handles, store)
	return &Services{
		Handles:   handles,
		Store:     store,
		Retriever: r,
		Answer:    answer.New(r, handles),
		Ingest:    ingest.New(handles, store),
		Rerank:    rerank.New(handles, rerankConcurrency),
		Embedding: embedding.New(handles),
		System:    system.New(handles, store),
	}
}

// Close 先释放模型句柄，再关闭向量库连接
func (s *Services) Close(ctx context.Context) {
	if s == nil {
		return
	}
	if s.Handles != nil {
		s.Handles.Close(ctx)
	}
	if s.Store != nil {
		if err := s.Store.Close(ctx); err != nil {
			g.Log().Warningf(ctx, "Failed to close vector store: %v", err)
		}
	}
	g.Log().Info(ctx, "Services closed")
}
