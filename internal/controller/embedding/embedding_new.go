// =================================================================================
// This is auto-generated by GoFrame CLI tool only once. Fill this file as you wish.
// =================================================================================

package embedding

import (
	"github.com/Malowking/kbrag/api/embedding"
	"github.com/Malowking/kbrag/internal/service"
)

type ControllerV1 struct {
	svcs *service.Services
}

func NewV1(svcs *service.Services) embedding.IEmbeddingV1 {
	return &ControllerV1{svcs: svcs}
}
