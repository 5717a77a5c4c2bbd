package v1

import (
	"github.com/Malowking/kbrag/internal/logic/rerank"
	"github.com/Malowking/kbrag/pkg/schema"
	"github.com/gogf/gf/v2/frame/g"
)

type RerankReq struct {
	g.Meta    `path:"/v1/rerank" method:"post" tags:"rerank" summary:"Rerank documents against one query"`
	Query     string   `json:"query" v:"required"`
	Documents []string `json:"documents" v:"required"`
	TopK      *int     `json:"top_k" dc:"optional, 1..len(documents)"`
}

type RerankRes struct {
	g.Meta         `mime:"application/json"`
	Query          string                `json:"query"`
	TotalDocuments int                   `json:"total_documents"`
	Results        []schema.RerankResult `json:"results"`
	TopK           *int                  `json:"top_k"`
	ProcessingTime float64               `json:"processing_time"`
	ModelInfo      rerank.ModelInfo      `json:"model_info"`
}

type RerankBatchReq struct {
	g.Meta    `path:"/v1/rerank/batch" method:"post" tags:"rerank" summary:"Rerank one document set against several queries"`
	Queries   []string `json:"queries" v:"required"`
	Documents []string `json:"documents" v:"required"`
	TopK      *int     `json:"top_k"`
}

type RerankBatchRes struct {
	g.Meta         `mime:"application/json"`
	TotalQueries   int                  `json:"total_queries"`
	TotalDocuments int                  `json:"total_documents"`
	BatchResults   []rerank.QueryResult `json:"batch_results"`
	TopK           *int                 `json:"top_k"`
	ProcessingTime float64              `json:"processing_time"`
	ModelInfo      rerank.ModelInfo     `json:"model_info"`
}

type RerankStatusReq struct {
	g.Meta `path:"/v1/rerank/status" method:"get" tags:"rerank" summary:"Rerank model status"`
}

type RerankStatusRes struct {
	g.Meta        `mime:"application/json"`
	IsLoaded      bool             `json:"is_loaded"`
	ModelInfo     rerank.ModelInfo `json:"model_info"`
	ServiceStatus string           `json:"service_status"`
}
