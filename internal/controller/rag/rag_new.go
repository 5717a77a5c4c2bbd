// =================================================================================
// This is auto-generated by GoFrame CLI tool only once. Fill this file as you wish.
// =================================================================================

package rag

import (
	"github.com/Malowking/kbrag/api/rag"
	"github.com/Malowking/kbrag/internal/service"
)

type ControllerV1 struct {
	svcs *service.Services
}

func NewV1(svcs *service.Services) rag.IRagV1 {
	return &ControllerV1{svcs: svcs}
}
