package v1

import (
	"github.com/Malowking/kbrag/core/generation"
	"github.com/Malowking/kbrag/internal/logic/system"
	"github.com/gogf/gf/v2/frame/g"
)

type SystemInfoReq struct {
	g.Meta `path:"/v1/system/info" method:"get" tags:"system" summary:"Collection and model overview"`
}

type SystemInfoRes struct {
	g.Meta       `mime:"application/json"`
	VectorDb     *system.VectorDBInfo `json:"vector_db,omitempty"`
	AiModel      *system.AIModelInfo  `json:"ai_model,omitempty"`
	SystemStatus string               `json:"system_status"`
	ErrorMessage string               `json:"error_message,omitempty"`
}

type ModelsListReq struct {
	g.Meta `path:"/v1/models" method:"get" tags:"system" summary:"List available generation models"`
}

type ModelsListRes struct {
	g.Meta `mime:"application/json"`
	Models []generation.ModelInfo `json:"models"`
}

type ModelGetReq struct {
	g.Meta    `path:"/v1/models/:model_name" method:"get" tags:"system" summary:"Describe one generation model"`
	ModelName string `json:"model_name" v:"required"`
}

type ModelGetRes struct {
	g.Meta `mime:"application/json"`
	*generation.ModelInfo
}

type HealthReq struct {
	g.Meta `path:"/v1/health" method:"get" tags:"system" summary:"Liveness check"`
}

type HealthRes struct {
	g.Meta    `mime:"application/json"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
