package rag

import (
	"context"
	"time"

	"github.com/Malowking/kbrag/api/rag/v1"
	"github.com/gogf/gf/v2/frame/g"
)

func (c *ControllerV1) SystemInfo(ctx context.Context, req *v1.SystemInfoReq) (res *v1.SystemInfoRes, err error) {
	info := c.svcs.System.Info(ctx)
	return &v1.SystemInfoRes{
		VectorDb:     info.VectorDB,
		AiModel:      info.AIModel,
		SystemStatus: info.SystemStatus,
		ErrorMessage: info.ErrorMessage,
	}, nil
}

func (c *ControllerV1) ModelsList(ctx context.Context, req *v1.ModelsListReq) (res *v1.ModelsListRes, err error) {
	models, err := c.svcs.System.Models(ctx)
	if err != nil {
		g.Log().Errorf(ctx, "Failed to list models: %v", err)
		return nil, err
	}
	return &v1.ModelsListRes{Models: models}, nil
}

func (c *ControllerV1) ModelGet(ctx context.Context, req *v1.ModelGetReq) (res *v1.ModelGetRes, err error) {
	info, err := c.svcs.System.Model(ctx, req.ModelName)
	if err != nil {
		g.Log().Errorf(ctx, "Failed to describe model %s: %v", req.ModelName, err)
		return nil, err
	}
	return &v1.ModelGetRes{ModelInfo: info}, nil
}

func (c *ControllerV1) Health(ctx context.Context, req *v1.HealthReq) (res *v1.HealthRes, err error) {
	return &v1.HealthRes{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
	}, nil
}
