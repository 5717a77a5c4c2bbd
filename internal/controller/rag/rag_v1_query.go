package rag

import (
	"context"

	"github.com/Malowking/kbrag/api/rag/v1"
	"github.com/gogf/gf/v2/frame/g"
)

func (c *ControllerV1) Search(ctx context.Context, req *v1.SearchReq) (res *v1.SearchRes, err error) {
	g.Log().Infof(ctx, "Search request received - query: %s, limit: %d", req.Query, req.Limit)

	out := c.svcs.Retriever.Search(ctx, req.Query, req.Limit)
	return &v1.SearchRes{
		Success:    out.Success,
		Documents:  out.Documents,
		Query:      out.Query,
		TotalFound: out.TotalFound,
		Message:    out.Message,
	}, nil
}

// Query 检索后生成回答，失败时返回致歉文本而非错误
func (c *ControllerV1) Query(ctx context.Context, req *v1.QueryReq) (res *v1.QueryRes, err error) {
	g.Log().Infof(ctx, "Query request received - question: %s, limit: %d", req.Question, req.Limit)

	out := c.svcs.Answer.Answer(ctx, req.Question, req.Limit)
	return &v1.QueryRes{
		Success:          out.Success,
		Response:         out.Response,
		Sources:          out.Sources,
		Query:            out.Query,
		SimilarityScores: out.SimilarityScores,
		Message:          out.Message,
	}, nil
}
