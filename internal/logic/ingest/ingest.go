package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/Malowking/kbrag/core/common"
	"github.com/Malowking/kbrag/core/errors"
	"github.com/Malowking/kbrag/core/model"
	"github.com/Malowking/kbrag/core/vector_store"
	"github.com/Malowking/kbrag/internal/metrics"
	"github.com/Malowking/kbrag/pkg/schema"
	"github.com/gogf/gf/v2/frame/g"
	"github.com/google/uuid"
)

// AddOutcome 文档入库结果，失败时不返回 ID
type AddOutcome struct {
	Success     bool
	Message     string
	DocumentIDs []string
}

// BatchOutcome 分批入库结果
type BatchOutcome struct {
	schema.BatchOutcome
	Success bool
	Message string
}

// DeleteOutcome 删除结果
type DeleteOutcome struct {
	Success bool
	Message string
}

// Service 文档入库与删除
type Service struct {
	handles *model.Handles
	store   vector_store.Store
	metrics *metrics.Metrics
}

func New(handles *model.Handles, store vector_store.Store) *Service {
	return &Service{
		handles: handles,
		store:   store,
		metrics: metrics.New(),
	}
}

// AddDocuments 为缺少 ID 的文档分配 ID，向量化后整体写入一次
//
// 传入的切片不会被修改；返回的 ID 与输入顺序一致。
func (s *Service) AddDocuments(ctx context.Context, docs []schema.Document) *AddOutcome {
	ids, err := s.addDocuments(ctx, docs)
	s.metrics.DocumentsIngested.WithLabelValues(metrics.Result(err == nil)).Add(float64(len(docs)))
	if err != nil {
		g.Log().Errorf(ctx, "Adding %d documents failed: %v", len(docs), err)
		return &AddOutcome{
			Success: false,
			Message: fmt.Sprintf("An error occurred while adding documents: %v", err),
		}
	}
	return &AddOutcome{
		Success:     true,
		Message:     fmt.Sprintf("%d documents were added successfully.", len(ids)),
		DocumentIDs: ids,
	}
}

func (s *Service) addDocuments(ctx context.Context, docs []schema.Document) ([]string, error) {
	if len(docs) == 0 {
		return nil, errors.New(errors.ErrInvalidParameter, "no documents to add")
	}

	// 同一批次内重复的 ID 只保留最后一次出现的内容，位置沿用首次出现的位置
	prepared := make([]schema.Document, 0, len(docs))
	position := make(map[string]int, len(docs))
	for i, doc := range docs {
		if doc.ID == "" {
			doc.ID = uuid.NewString()
		} else if !common.ValidateDocumentID(doc.ID) {
			return nil, errors.Newf(errors.ErrInvalidParameter, "document %d has an invalid id %q", i, doc.ID)
		}
		if strings.TrimSpace(doc.Content) == "" {
			return nil, errors.Newf(errors.ErrInvalidParameter, "document %d has empty content", i)
		}
		if len(doc.Title) > vector_store.MaxTextLen || len(doc.Source) > vector_store.MaxTextLen {
			return nil, errors.Newf(errors.ErrInvalidParameter, "document %d title and source must be at most %d bytes", i, vector_store.MaxTextLen)
		}
		if err := doc.Metadata.Validate(); err != nil {
			return nil, errors.Wrapf(err, errors.ErrMetadataInvalid, "document %d", i)
		}
		if pos, ok := position[doc.ID]; ok {
			g.Log().Debugf(ctx, "Document id %s repeated in batch, keeping the later content", doc.ID)
			prepared[pos] = doc
			continue
		}
		position[doc.ID] = len(prepared)
		prepared = append(prepared, doc)
	}

	contents := make([]string, len(prepared))
	for i, doc := range prepared {
		contents[i] = common.NormalizeForEmbedding(doc.Content)
	}

	embedder, err := s.handles.Embedder()
	if err != nil {
		return nil, err
	}
	vectors, err := embedder.EmbedStrings(ctx, contents)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(prepared) {
		return nil, errors.Newf(errors.ErrEmbeddingFailed, "got %d embeddings for %d documents", len(vectors), len(prepared))
	}
	for i := range prepared {
		prepared[i].Embedding = vectors[i]
	}

	ok, err := s.store.Upsert(ctx, prepared)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New(errors.ErrVectorInsert, "vector store rejected the documents")
	}

	ids := make([]string, len(prepared))
	for i, doc := range prepared {
		ids[i] = doc.ID
	}
	return ids, nil
}

// BatchProcess 按 chunkSize 顺序切分并逐块入库
//
// 每块整体成功或整体失败，某块失败不影响后续块；
// Processed + Failed 恒等于文档总数。
func (s *Service) BatchProcess(ctx context.Context, docs []schema.Document, chunkSize int) (*BatchOutcome, error) {
	if chunkSize < 1 {
		return nil, errors.Newf(errors.ErrInvalidParameter, "chunkSize must be at least 1, got %d", chunkSize)
	}

	out := &BatchOutcome{}
	out.TotalDocuments = len(docs)
	for start := 0; start < len(docs); start += chunkSize {
		end := start + chunkSize
		if end > len(docs) {
			end = len(docs)
		}
		chunk := docs[start:end]

		res := s.AddDocuments(ctx, chunk)
		s.metrics.BatchChunks.WithLabelValues(metrics.Result(res.Success)).Inc()
		if res.Success {
			out.ProcessedDocuments += len(chunk)
		} else {
			out.FailedDocuments += len(chunk)
			g.Log().Warningf(ctx, "Batch chunk [%d, %d) failed: %s", start, end, res.Message)
		}
	}

	out.Success = true
	out.Message = fmt.Sprintf("Batch processing finished: %d succeeded, %d failed", out.ProcessedDocuments, out.FailedDocuments)
	g.Log().Infof(ctx, "%s (total %d, chunk size %d)", out.Message, out.TotalDocuments, chunkSize)
	return out, nil
}

// DeleteDocument 按 ID 删除文档，不存在的 ID 同样返回成功
func (s *Service) DeleteDocument(ctx context.Context, id string) *DeleteOutcome {
	if !common.ValidateDocumentID(id) {
		return &DeleteOutcome{Success: false, Message: fmt.Sprintf("Invalid document id: %q", id)}
	}
	ok, err := s.store.Delete(ctx, id)
	if err != nil {
		return &DeleteOutcome{Success: false, Message: fmt.Sprintf("An error occurred while deleting the document: %v", err)}
	}
	if !ok {
		return &DeleteOutcome{Success: false, Message: "An error occurred while deleting the document."}
	}
	return &DeleteOutcome{Success: true, Message: fmt.Sprintf("Document %s was deleted successfully.", id)}
}
