package embedding

import (
	"context"

	"github.com/Malowking/kbrag/api/embedding/v1"
)

func (c *ControllerV1) Embedding(ctx context.Context, req *v1.EmbeddingReq) (res *v1.EmbeddingRes, err error) {
	out, err := c.svcs.Embedding.Embed(ctx, req.Text)
	if err != nil {
		return nil, err
	}
	return &v1.EmbeddingRes{
		Embedding:          out.Embedding,
		TextLength:         out.TextLength,
		EmbeddingDimension: out.EmbeddingDimension,
		ProcessingTime:     out.ProcessingTime,
		ModelInfo:          out.ModelInfo,
	}, nil
}

func (c *ControllerV1) EmbeddingBatch(ctx context.Context, req *v1.EmbeddingBatchReq) (res *v1.EmbeddingBatchRes, err error) {
	out, err := c.svcs.Embedding.EmbedBatch(ctx, req.Texts)
	if err != nil {
		return nil, err
	}
	return &v1.EmbeddingBatchRes{
		Embeddings:         out.Embeddings,
		TextCount:          out.TextCount,
		EmbeddingDimension: out.EmbeddingDimension,
		ProcessingTime:     out.ProcessingTime,
		ModelInfo:          out.ModelInfo,
	}, nil
}

func (c *ControllerV1) EmbeddingStatus(ctx context.Context, req *v1.EmbeddingStatusReq) (res *v1.EmbeddingStatusRes, err error) {
	status := c.svcs.Embedding.Status()
	return &v1.EmbeddingStatusRes{
		IsLoaded:      status.IsLoaded,
		ModelInfo:     status.ModelInfo,
		ServiceStatus: status.ServiceStatus,
	}, nil
}
