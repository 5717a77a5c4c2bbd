package v1

import (
	"github.com/Malowking/kbrag/internal/logic/embedding"
	"github.com/gogf/gf/v2/frame/g"
)

type EmbeddingReq struct {
	g.Meta `path:"/v1/embedding" method:"post" tags:"embedding" summary:"Embed one text"`
	Text   string `json:"text" v:"required"`
}

type EmbeddingRes struct {
	g.Meta             `mime:"application/json"`
	Embedding          []float32           `json:"embedding"`
	TextLength         int                 `json:"text_length"`
	EmbeddingDimension int                 `json:"embedding_dimension"`
	ProcessingTime     float64             `json:"processing_time"`
	ModelInfo          embedding.ModelInfo `json:"model_info"`
}

type EmbeddingBatchReq struct {
	g.Meta `path:"/v1/embedding/batch" method:"post" tags:"embedding" summary:"Embed several texts"`
	Texts  []string `json:"texts" v:"required"`
}

type EmbeddingBatchRes struct {
	g.Meta             `mime:"application/json"`
	Embeddings         [][]float32         `json:"embeddings"`
	TextCount          int                 `json:"text_count"`
	EmbeddingDimension int                 `json:"embedding_dimension"`
	ProcessingTime     float64             `json:"processing_time"`
	ModelInfo          embedding.ModelInfo `json:"model_info"`
}

type EmbeddingStatusReq struct {
	g.Meta `path:"/v1/embedding/status" method:"get" tags:"embedding" summary:"Embedding model status"`
}

type EmbeddingStatusRes struct {
	g.Meta        `mime:"application/json"`
	IsLoaded      bool                `json:"is_loaded"`
	ModelInfo     embedding.ModelInfo `json:"model_info"`
	ServiceStatus string              `json:"service_status"`
}
