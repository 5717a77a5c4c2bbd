package vector_store

import (
	"context"

	"github.com/Malowking/kbrag/pkg/schema"
)

// VectorStoreType 向量数据库类型
type VectorStoreType string

const (
	VectorStoreTypeMilvus   VectorStoreType = "milvus"
	VectorStoreTypePgvector VectorStoreType = "pgvector"
	VectorStoreTypeChromem  VectorStoreType = "chromem"
)

const (
	FieldID        = "id"
	FieldContent   = "content"
	FieldTitle     = "title"
	FieldSource    = "source"
	FieldMetadata  = "metadata"
	FieldEmbedding = "embedding"

	maxContentLen = 65535
	// MaxTextLen 标题与来源的最大字节数
	MaxTextLen = 500
)

// Store 单个逻辑集合上的向量库适配器
//
// 单次操作失败时记录日志并返回 false/空结果，同时返回错误供上层拼装提示信息。
// 写操作（upsert + flush）与读操作互斥，写入返回成功后随后的检索一定可见。
type Store interface {
	// Upsert 写入或覆盖文档（同 ID 后写覆盖），返回前完成 flush/commit
	Upsert(ctx context.Context, docs []schema.Document) (bool, error)
	// SearchSimilar 余弦相似度检索，最多返回 limit 条，按分数降序
	SearchSimilar(ctx context.Context, vector []float32, limit int) ([]schema.SearchResult, error)
	// Delete 按 ID 删除，ID 不存在视为成功
	Delete(ctx context.Context, id string) (bool, error)
	// Stats 集合名称与文档数
	Stats(ctx context.Context) (schema.CollectionStats, error)
	// Close 释放连接
	Close(ctx context.Context) error
}

// Config 向量库配置
type Config struct {
	Type       VectorStoreType `json:"type"`
	Collection string          `json:"collection"`
	Dimension  int             `json:"dimension"`

	Milvus   MilvusConfig   `json:"milvus"`
	Postgres PostgresConfig `json:"postgres"`
	Chromem  ChromemConfig  `json:"chromem"`
}

// MilvusConfig Milvus 连接与索引参数
type MilvusConfig struct {
	Address  string `json:"address"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
	NList    int    `json:"nlist"`
	NProbe   int    `json:"nprobe"`
}

// PostgresConfig pgvector 连接参数
type PostgresConfig struct {
	DSN    string `json:"dsn"`
	Lists  int    `json:"lists"`
	Probes int    `json:"probes"` // 为 0 时等于 Lists，即精确检索
}

// ChromemConfig 嵌入式向量库参数，Path 为空时仅在内存中
type ChromemConfig struct {
	Path     string `json:"path"`
	Compress bool   `json:"compress"`
}

// checkDocs 校验待写入文档的向量维度和字段长度，超长字段直接拒绝
func checkDocs(docs []schema.Document, dim int) error {
	for _, d := range docs {
		if d.ID == "" {
			return errEmptyID
		}
		if len(d.Content) > maxContentLen {
			return &lengthError{id: d.ID, field: FieldContent, got: len(d.Content), max: maxContentLen}
		}
		if len(d.Title) > MaxTextLen {
			return &lengthError{id: d.ID, field: FieldTitle, got: len(d.Title), max: MaxTextLen}
		}
		if len(d.Source) > MaxTextLen {
			return &lengthError{id: d.ID, field: FieldSource, got: len(d.Source), max: MaxTextLen}
		}
		if len(d.Embedding) != dim {
			return &dimensionError{id: d.ID, got: len(d.Embedding), want: dim}
		}
	}
	return nil
}
