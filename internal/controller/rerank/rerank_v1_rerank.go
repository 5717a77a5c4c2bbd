package rerank

import (
	"context"

	"github.com/Malowking/kbrag/api/rerank/v1"
	"github.com/gogf/gf/v2/frame/g"
)

func (c *ControllerV1) Rerank(ctx context.Context, req *v1.RerankReq) (res *v1.RerankRes, err error) {
	g.Log().Infof(ctx, "Rerank request received - documents: %d", len(req.Documents))

	out, err := c.svcs.Rerank.Rerank(ctx, req.Query, req.Documents, req.TopK)
	if err != nil {
		return nil, err
	}
	return &v1.RerankRes{
		Query:          out.Query,
		TotalDocuments: out.TotalDocuments,
		Results:        out.Results,
		TopK:           out.TopK,
		ProcessingTime: out.ProcessingTime,
		ModelInfo:      out.ModelInfo,
	}, nil
}

// RerankBatch 多个查询共用同一组文档，结果与查询顺序一致
func (c *ControllerV1) RerankBatch(ctx context.Context, req *v1.RerankBatchReq) (res *v1.RerankBatchRes, err error) {
	g.Log().Infof(ctx, "RerankBatch request received - queries: %d, documents: %d", len(req.Queries), len(req.Documents))

	out, err := c.svcs.Rerank.RerankBatch(ctx, req.Queries, req.Documents, req.TopK)
	if err != nil {
		return nil, err
	}
	return &v1.RerankBatchRes{
		TotalQueries:   out.TotalQueries,
		TotalDocuments: out.TotalDocuments,
		BatchResults:   out.BatchResults,
		TopK:           out.TopK,
		ProcessingTime: out.ProcessingTime,
		ModelInfo:      out.ModelInfo,
	}, nil
}

func (c *ControllerV1) RerankStatus(ctx context.Context, req *v1.RerankStatusReq) (res *v1.RerankStatusRes, err error) {
	status := c.svcs.Rerank.Status()
	return &v1.RerankStatusRes{
		IsLoaded:      status.IsLoaded,
		ModelInfo:     status.ModelInfo,
		ServiceStatus: status.ServiceStatus,
	}, nil
}
