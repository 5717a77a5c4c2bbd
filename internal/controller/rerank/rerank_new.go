// =================================================================================
// This is auto-generated by GoFrame CLI tool only once. Fill this file as you wish.
// =================================================================================

package rerank

import (
	"github.com/Malowking/kbrag/api/rerank"
	"github.com/Malowking/kbrag/internal/service"
)

type ControllerV1 struct {
	svcs *service.Services
}

func NewV1(svcs *service.Services) rerank.IRerankV1 {
	return &ControllerV1{svcs: svcs}
}
