package rag

import (
	"context"

	"github.com/Malowking/kbrag/api/rag/v1"
	"github.com/gogf/gf/v2/frame/g"
)

// DocumentsAdd 向量化并写入文档，整批失败时不返回任何 ID
func (c *ControllerV1) DocumentsAdd(ctx context.Context, req *v1.DocumentsAddReq) (res *v1.DocumentsAddRes, err error) {
	g.Log().Infof(ctx, "DocumentsAdd request received - count: %d", len(req.Documents))

	out := c.svcs.Ingest.AddDocuments(ctx, v1.ToDocuments(req.Documents))
	return &v1.DocumentsAddRes{
		Success:     out.Success,
		Message:     out.Message,
		DocumentIds: out.DocumentIDs,
	}, nil
}

// DocumentsDelete 删除文档，文档不存在也视为成功
func (c *ControllerV1) DocumentsDelete(ctx context.Context, req *v1.DocumentsDeleteReq) (res *v1.DocumentsDeleteRes, err error) {
	g.Log().Infof(ctx, "DocumentsDelete request received - documentId: %s", req.DocumentId)

	out := c.svcs.Ingest.DeleteDocument(ctx, req.DocumentId)
	return &v1.DocumentsDeleteRes{
		Success: out.Success,
		Message: out.Message,
	}, nil
}

func (c *ControllerV1) Batch(ctx context.Context, req *v1.BatchReq) (res *v1.BatchRes, err error) {
	g.Log().Infof(ctx, "Batch request received - count: %d, chunkSize: %d", len(req.Documents), req.ChunkSize)

	out, err := c.svcs.Ingest.BatchProcess(ctx, v1.ToDocuments(req.Documents), req.ChunkSize)
	if err != nil {
		return nil, err
	}
	return &v1.BatchRes{
		Success:            out.Success,
		Message:            out.Message,
		TotalDocuments:     out.TotalDocuments,
		ProcessedDocuments: out.ProcessedDocuments,
		FailedDocuments:    out.FailedDocuments,
	}, nil
}
