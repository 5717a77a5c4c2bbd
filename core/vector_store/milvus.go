package vector_store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/Malowking/kbrag/core/common"
	"github.com/Malowking/kbrag/core/errors"
	"github.com/Malowking/kbrag/pkg/schema"
	"github.com/gogf/gf/v2/frame/g"
	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"
)

const (
	defaultNList  = 128
	defaultNProbe = 10
)

// MilvusStore Milvus向量数据库实现
type MilvusStore struct {
	mu         sync.RWMutex
	client     *milvusclient.Client
	collection string
	dim        int
	nprobe     int
}

// NewMilvusStore 连接 Milvus 并确保集合存在、已建索引并加载
func NewMilvusStore(ctx context.Context, cfg Config) (*MilvusStore, error) {
	mc := cfg.Milvus
	if mc.Address == "" {
		return nil, fmt.Errorf("milvus.address is required but not found in config file")
	}
	if mc.Database == "" {
		mc.Database = "default"
	}
	if mc.NList <= 0 {
		mc.NList = defaultNList
	}
	if mc.NProbe <= 0 {
		mc.NProbe = defaultNProbe
	}

	g.Log().Infof(ctx, "Connecting to Milvus at: %s, database: %s", mc.Address, mc.Database)

	client, err := milvusclient.New(ctx, &milvusclient.ClientConfig{
		Address:  mc.Address,
		DBName:   mc.Database,
		Username: mc.Username,
		Password: mc.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client (address: %s, database: %s): %w", mc.Address, mc.Database, err)
	}

	m := &MilvusStore{
		client:     client,
		collection: cfg.Collection,
		dim:        cfg.Dimension,
		nprobe:     mc.NProbe,
	}
	if err := m.ensureCollection(ctx, mc.NList); err != nil {
		_ = client.Close(ctx)
		return nil, err
	}
	return m, nil
}

// collectionFields 集合的固定 schema
func collectionFields(dim int) []*entity.Field {
	return []*entity.Field{
		{
			Name:        FieldID,
			DataType:    entity.FieldTypeVarChar,
			TypeParams:  map[string]string{"max_length": strconv.Itoa(common.MaxDocumentIDLen)},
			PrimaryKey:  true,
			AutoID:      false,
			Description: "Document unique ID (primary key)",
		},
		{
			Name:        FieldContent,
			DataType:    entity.FieldTypeVarChar,
			TypeParams:  map[string]string{"max_length": strconv.Itoa(maxContentLen)},
			Description: "Document content",
		},
		{
			Name:        FieldTitle,
			DataType:    entity.FieldTypeVarChar,
			TypeParams:  map[string]string{"max_length": strconv.Itoa(MaxTextLen)},
			Description: "Document title",
		},
		{
			Name:        FieldSource,
			DataType:    entity.FieldTypeVarChar,
			TypeParams:  map[string]string{"max_length": strconv.Itoa(MaxTextLen)},
			Description: "Document source",
		},
		{
			Name:        FieldMetadata,
			DataType:    entity.FieldTypeVarChar,
			TypeParams:  map[string]string{"max_length": strconv.Itoa(schema.MaxMetadataBytes)},
			Description: "Serialized metadata",
		},
		{
			Name:        FieldEmbedding,
			DataType:    entity.FieldTypeFloatVector,
			TypeParams:  map[string]string{"dim": strconv.Itoa(dim)},
			Description: "Document embedding vector",
		},
	}
}

// ensureCollection 集合不存在时创建（COSINE + IVF_FLAT），并加载到内存
func (m *MilvusStore) ensureCollection(ctx context.Context, nlist int) error {
	has, err := m.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(m.collection))
	if err != nil {
		return fmt.Errorf("failed to check if collection exists: %w", err)
	}

	if !has {
		collSchema := &entity.Schema{
			CollectionName: m.collection,
			Description:    "RAG documents and their embeddings",
			AutoID:         false,
			Fields:         collectionFields(m.dim),
		}
		err = m.client.CreateCollection(ctx, milvusclient.NewCreateCollectionOption(m.collection, collSchema).WithIndexOptions(
			milvusclient.NewCreateIndexOption(m.collection, FieldEmbedding, index.NewIvfFlatIndex(entity.COSINE, nlist))))
		if err != nil {
			return fmt.Errorf("failed to create Milvus collection: %w", err)
		}
		g.Log().Infof(ctx, "Collection '%s' created with dimension %d, IVF_FLAT nlist=%d", m.collection, m.dim, nlist)
	}

	task, err := m.client.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(m.collection))
	if err != nil {
		return fmt.Errorf("failed to load Milvus collection: %w", err)
	}
	if err := task.Await(ctx); err != nil {
		return fmt.Errorf("failed to wait for collection load: %w", err)
	}
	return nil
}

// Upsert 写入文档并 flush，保证随后的检索可见
func (m *MilvusStore) Upsert(ctx context.Context, docs []schema.Document) (bool, error) {
	if len(docs) == 0 {
		return true, nil
	}
	if err := checkDocs(docs, m.dim); err != nil {
		g.Log().Errorf(ctx, "Milvus upsert rejected: %v", err)
		return false, errors.Wrapf(err, errors.ErrVectorInsert, "invalid documents")
	}

	ids := make([]string, len(docs))
	contents := make([]string, len(docs))
	titles := make([]string, len(docs))
	sources := make([]string, len(docs))
	metadataList := make([]string, len(docs))
	vectors := make([][]float32, len(docs))
	for i, doc := range docs {
		meta, err := schema.EncodeMetadata(doc.Metadata)
		if err != nil {
			g.Log().Errorf(ctx, "Milvus upsert rejected: document %s: %v", doc.ID, err)
			return false, errors.Wrapf(err, errors.ErrMetadataInvalid, "document %s", doc.ID)
		}
		ids[i] = doc.ID
		contents[i] = doc.Content
		titles[i] = doc.Title
		sources[i] = doc.Source
		metadataList[i] = meta
		vectors[i] = doc.Embedding
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	result, err := m.client.Upsert(ctx, milvusclient.NewColumnBasedInsertOption(m.collection,
		column.NewColumnVarChar(FieldID, ids),
		column.NewColumnVarChar(FieldContent, contents),
		column.NewColumnVarChar(FieldTitle, titles),
		column.NewColumnVarChar(FieldSource, sources),
		column.NewColumnVarChar(FieldMetadata, metadataList),
		column.NewColumnFloatVector(FieldEmbedding, m.dim, vectors),
	))
	if err != nil {
		g.Log().Errorf(ctx, "Milvus upsert into '%s' failed: %v", m.collection, err)
		return false, errors.Wrapf(err, errors.ErrVectorInsert, "failed to upsert %d documents", len(docs))
	}

	if err := m.flush(ctx); err != nil {
		g.Log().Errorf(ctx, "Milvus flush of '%s' failed: %v", m.collection, err)
		return false, errors.Wrapf(err, errors.ErrVectorInsert, "failed to flush collection")
	}

	g.Log().Infof(ctx, "Successfully upserted %d documents into collection '%s'", result.UpsertCount, m.collection)
	return true, nil
}

func (m *MilvusStore) flush(ctx context.Context) error {
	task, err := m.client.Flush(ctx, milvusclient.NewFlushOption(m.collection))
	if err != nil {
		return err
	}
	return task.Await(ctx)
}

// SearchSimilar 余弦相似度检索
func (m *MilvusStore) SearchSimilar(ctx context.Context, vector []float32, limit int) ([]schema.SearchResult, error) {
	if limit <= 0 {
		return []schema.SearchResult{}, nil
	}
	if len(vector) != m.dim {
		err := &dimensionError{id: "query", got: len(vector), want: m.dim}
		g.Log().Errorf(ctx, "Milvus search rejected: %v", err)
		return []schema.SearchResult{}, errors.Wrapf(err, errors.ErrVectorSearch, "invalid query vector")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	searchOpt := milvusclient.NewSearchOption(m.collection, limit, []entity.Vector{entity.FloatVector(vector)}).
		WithANNSField(FieldEmbedding).
		WithAnnParam(index.NewIvfAnnParam(m.nprobe)).
		WithOutputFields(FieldID, FieldContent, FieldTitle, FieldSource, FieldMetadata).
		WithConsistencyLevel(entity.ClStrong)

	results, err := m.client.Search(ctx, searchOpt)
	if err != nil {
		g.Log().Errorf(ctx, "Milvus search in '%s' failed: %v", m.collection, err)
		return []schema.SearchResult{}, errors.Wrapf(err, errors.ErrVectorSearch, "search failed")
	}
	if len(results) == 0 || results[0].ResultCount == 0 {
		return []schema.SearchResult{}, nil
	}

	docs, err := convertSearchColumns(ctx, results[0].Fields, results[0].Scores)
	if err != nil {
		g.Log().Errorf(ctx, "Milvus search result conversion failed: %v", err)
		return []schema.SearchResult{}, errors.Wrapf(err, errors.ErrVectorSearch, "invalid search result")
	}
	schema.SortByScore(docs)
	return docs, nil
}

// convertSearchColumns 将列式结果转换为 SearchResult
func convertSearchColumns(ctx context.Context, columns []column.Column, scores []float32) ([]schema.SearchResult, error) {
	if len(columns) == 0 {
		return []schema.SearchResult{}, nil
	}

	numDocs := columns[0].Len()
	result := make([]schema.SearchResult, numDocs)
	for i := 0; i < numDocs && i < len(scores); i++ {
		result[i].Score = float64(scores[i])
	}

	for _, col := range columns {
		for i := 0; i < col.Len() && i < numDocs; i++ {
			val, err := col.Get(i)
			if err != nil {
				return nil, fmt.Errorf("failed to get %s: %w", col.Name(), err)
			}
			str, _ := val.(string)
			switch col.Name() {
			case FieldID:
				result[i].ID = str
			case FieldContent:
				result[i].Content = str
			case FieldTitle:
				result[i].Title = str
			case FieldSource:
				result[i].Source = str
			case FieldMetadata:
				meta, err := schema.DecodeMetadata(str)
				if err != nil {
					// 元数据损坏不影响检索结果本身
					g.Log().Warningf(ctx, "Ignoring invalid metadata of document %s: %v", result[i].ID, err)
					meta = schema.Metadata{}
				}
				result[i].Metadata = meta
			}
		}
	}
	return result, nil
}

// Delete 按 ID 删除，不存在的 ID 视为成功
func (m *MilvusStore) Delete(ctx context.Context, id string) (bool, error) {
	if !common.ValidateDocumentID(id) {
		g.Log().Errorf(ctx, "Milvus delete rejected: invalid document id %q", id)
		return false, errors.Newf(errors.ErrInvalidParameter, "invalid document ID: %q", id)
	}
	filterExpr := fmt.Sprintf(`%s == "%s"`, FieldID, common.SanitizeMilvusString(id))

	m.mu.Lock()
	defer m.mu.Unlock()

	g.Log().Infof(ctx, "Deleting document %s from collection %s", id, m.collection)
	result, err := m.client.Delete(ctx, milvusclient.NewDeleteOption(m.collection).WithExpr(filterExpr))
	if err != nil {
		g.Log().Errorf(ctx, "Milvus delete of %s failed: %v", id, err)
		return false, errors.Wrapf(err, errors.ErrVectorDelete, "failed to delete document %s", id)
	}
	if err := m.flush(ctx); err != nil {
		g.Log().Errorf(ctx, "Milvus flush after delete failed: %v", err)
		return false, errors.Wrapf(err, errors.ErrVectorDelete, "failed to flush collection")
	}

	if result.DeleteCount == 0 {
		g.Log().Infof(ctx, "No document was deleted for id=%s", id)
	}
	return true, nil
}

// Stats 使用 count(*) 统计当前可见文档数
func (m *MilvusStore) Stats(ctx context.Context) (schema.CollectionStats, error) {
	stats := schema.CollectionStats{Name: m.collection}

	m.mu.RLock()
	defer m.mu.RUnlock()

	rs, err := m.client.Query(ctx, milvusclient.NewQueryOption(m.collection).
		WithOutputFields("count(*)").
		WithConsistencyLevel(entity.ClStrong))
	if err != nil {
		g.Log().Errorf(ctx, "Milvus count of '%s' failed: %v", m.collection, err)
		return stats, errors.Wrapf(err, errors.ErrVectorSearch, "failed to count documents")
	}
	col := rs.GetColumn("count(*)")
	if col == nil || col.Len() == 0 {
		return stats, nil
	}
	val, err := col.Get(0)
	if err != nil {
		return stats, errors.Wrapf(err, errors.ErrVectorSearch, "failed to read document count")
	}
	count, err := strconv.ParseInt(strings.TrimSpace(fmt.Sprint(val)), 10, 64)
	if err != nil {
		return stats, errors.Wrapf(err, errors.ErrVectorSearch, "unexpected document count %v", val)
	}
	stats.DocumentCount = count
	return stats, nil
}

// Close 关闭客户端连接
func (m *MilvusStore) Close(ctx context.Context) error {
	return m.client.Close(ctx)
}
