package system

import (
	"context"

	"github.com/Malowking/kbrag/core/generation"
	"github.com/Malowking/kbrag/core/model"
	"github.com/Malowking/kbrag/core/vector_store"
	"github.com/gogf/gf/v2/frame/g"
)

const (
	StatusOperational = "operational"
	StatusError       = "error"
)

// VectorDBInfo 向量库概况
type VectorDBInfo struct {
	CollectionName string `json:"collection_name"`
	DocumentsCount int64  `json:"documents_count"`
}

// AIModelInfo 模型概况
type AIModelInfo struct {
	CurrentModel    string   `json:"current_model"`
	EmbeddingModel  string   `json:"embedding_model"`
	RerankModel     string   `json:"rerank_model"`
	AvailableModels []string `json:"available_models"`
}

// Info 系统信息，SystemStatus 为 error 时 ErrorMessage 给出原因
type Info struct {
	VectorDB     *VectorDBInfo
	AIModel      *AIModelInfo
	SystemStatus string
	ErrorMessage string
}

// Service 只读的系统信息查询
type Service struct {
	handles *model.Handles
	store   vector_store.Store
}

func New(handles *model.Handles, store vector_store.Store) *Service {
	return &Service{handles: handles, store: store}
}

// Info 汇总集合统计与模型信息
func (s *Service) Info(ctx context.Context) *Info {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		g.Log().Errorf(ctx, "Failed to collect system info: %v", err)
		return &Info{SystemStatus: StatusError, ErrorMessage: err.Error()}
	}

	names := s.handles.Names()
	ai := &AIModelInfo{
		CurrentModel:    names[model.ModelTypeLLM],
		EmbeddingModel:  names[model.ModelTypeEmbedding],
		RerankModel:     names[model.ModelTypeReranker],
		AvailableModels: []string{},
	}
	// 模型列表不可用时不影响系统状态
	if models, err := s.Models(ctx); err != nil {
		g.Log().Warningf(ctx, "Failed to list available models: %v", err)
	} else {
		for _, m := range models {
			ai.AvailableModels = append(ai.AvailableModels, m.Name)
		}
	}

	return &Info{
		VectorDB: &VectorDBInfo{
			CollectionName: stats.Name,
			DocumentsCount: stats.DocumentCount,
		},
		AIModel:      ai,
		SystemStatus: StatusOperational,
	}
}

// Models 列出生成服务端可用的模型
func (s *Service) Models(ctx context.Context) ([]generation.ModelInfo, error) {
	catalog, err := s.handles.Catalog()
	if err != nil {
		return nil, err
	}
	return catalog.List(ctx)
}

// Model 查询单个模型详情
func (s *Service) Model(ctx context.Context, name string) (*generation.ModelInfo, error) {
	catalog, err := s.handles.Catalog()
	if err != nil {
		return nil, err
	}
	info, err := catalog.Describe(ctx, name)
	if err != nil {
		return nil, err
	}
	return &info, nil
}
