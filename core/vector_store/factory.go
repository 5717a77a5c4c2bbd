package vector_store

import (
	"context"

	"github.com/Malowking/kbrag/core/common"
	"github.com/Malowking/kbrag/core/errors"
	"github.com/gogf/gf/v2/frame/g"
)

// NewStore 按配置创建向量库并完成集合初始化，连接失败直接返回错误
func NewStore(ctx context.Context, cfg Config) (Store, error) {
	if !common.ValidateCollectionName(cfg.Collection) {
		return nil, errors.Newf(errors.ErrVectorStoreInit, "invalid collection name: %q", cfg.Collection)
	}
	if cfg.Dimension <= 0 {
		return nil, errors.Newf(errors.ErrVectorStoreInit, "vector dimension must be positive, got %d", cfg.Dimension)
	}

	g.Log().Infof(ctx, "Initializing vector store with type: %s", cfg.Type)

	var (
		store Store
		err   error
	)
	switch cfg.Type {
	case VectorStoreTypeMilvus, "":
		store, err = NewMilvusStore(ctx, cfg)
	case VectorStoreTypePgvector:
		store, err = NewPgvectorStore(ctx, cfg)
	case VectorStoreTypeChromem:
		store, err = NewChromemStore(ctx, cfg)
	default:
		return nil, errors.Newf(errors.ErrVectorStoreInit, "unsupported vector store type: %s", cfg.Type)
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrVectorStoreInit, "failed to initialize %s vector store", cfg.Type)
	}

	g.Log().Infof(ctx, "Vector store %s ready, collection '%s', dimension %d", cfg.Type, cfg.Collection, cfg.Dimension)
	return store, nil
}
