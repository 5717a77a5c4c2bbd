package v1

import (
	"github.com/Malowking/kbrag/pkg/schema"
	"github.com/gogf/gf/v2/frame/g"
)

type SearchReq struct {
	g.Meta `path:"/v1/search" method:"post" tags:"rag" summary:"Similarity search over stored documents"`
	Query  string `json:"query" v:"required"`
	Limit  int    `json:"limit" d:"10" v:"min:1|max:50"`
}

type SearchRes struct {
	g.Meta     `mime:"application/json"`
	Success    bool                  `json:"success"`
	Documents  []schema.SearchResult `json:"documents"`
	Query      string                `json:"query"`
	TotalFound int                   `json:"total_found"`
	Message    string                `json:"message,omitempty"`
}

type QueryReq struct {
	g.Meta   `path:"/v1/query" method:"post" tags:"rag" summary:"Answer a question from stored documents"`
	Question string `json:"question" v:"required"`
	Limit    int    `json:"limit" d:"5" v:"min:1|max:20"`
}

type QueryRes struct {
	g.Meta           `mime:"application/json"`
	Success          bool            `json:"success"`
	Response         string          `json:"response"`
	Sources          []schema.Source `json:"sources"`
	Query            string          `json:"query"`
	SimilarityScores []float64       `json:"similarity_scores,omitempty"`
	Message          string          `json:"message,omitempty"`
}
