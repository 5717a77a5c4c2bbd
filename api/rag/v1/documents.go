package v1

import (
	"github.com/Malowking/kbrag/pkg/schema"
	"github.com/gogf/gf/v2/frame/g"
)

// DocumentInput 待入库的文档，id 缺省时由服务端生成
type DocumentInput struct {
	Id       string          `json:"id" dc:"document id, generated when empty"`
	Content  string          `json:"content" v:"required" dc:"document content"`
	Title    string          `json:"title" v:"max-length:500"`
	Source   string          `json:"source" v:"max-length:500"`
	Metadata schema.Metadata `json:"metadata" dc:"scalar values, or one level of lists/objects"`
}

type DocumentsAddReq struct {
	g.Meta    `path:"/v1/documents" method:"post" tags:"rag" summary:"Add documents"`
	Documents []DocumentInput `json:"documents" v:"required"`
}

type DocumentsAddRes struct {
	g.Meta      `mime:"application/json"`
	Success     bool     `json:"success"`
	Message     string   `json:"message"`
	DocumentIds []string `json:"document_ids,omitempty"`
}

type DocumentsDeleteReq struct {
	g.Meta     `path:"/v1/documents/:document_id" method:"delete" tags:"rag" summary:"Delete a document"`
	DocumentId string `json:"document_id" v:"required"`
}

type DocumentsDeleteRes struct {
	g.Meta  `mime:"application/json"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type BatchReq struct {
	g.Meta    `path:"/v1/batch" method:"post" tags:"rag" summary:"Add documents in sequential chunks"`
	Documents []DocumentInput `json:"documents" v:"required"`
	ChunkSize int             `json:"chunk_size" d:"100" v:"min:1|max:1000"`
}

type BatchRes struct {
	g.Meta             `mime:"application/json"`
	Success            bool   `json:"success"`
	Message            string `json:"message"`
	TotalDocuments     int    `json:"total_documents"`
	ProcessedDocuments int    `json:"processed_documents"`
	FailedDocuments    int    `json:"failed_documents"`
}

// ToDocuments 转换为内部文档结构
func ToDocuments(in []DocumentInput) []schema.Document {
	docs := make([]schema.Document, len(in))
	for i, d := range in {
		docs[i] = schema.Document{
			ID:       d.Id,
			Content:  d.Content,
			Title:    d.Title,
			Source:   d.Source,
			Metadata: d.Metadata,
		}
	}
	return docs
}
