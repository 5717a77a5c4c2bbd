package vector_store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Malowking/kbrag/core/errors"
	"github.com/Malowking/kbrag/pkg/schema"
	"github.com/gogf/gf/v2/frame/g"
	"github.com/pgvector/pgvector-go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const defaultLists = 100

// PgvectorStore PostgreSQL + pgvector 实现
type PgvectorStore struct {
	mu     sync.RWMutex
	db     *gorm.DB
	table  string
	dim    int
	probes int
}

// pgDocument 表行结构，表名随集合变化，写入时通过 Table 指定
type pgDocument struct {
	ID        string          `gorm:"column:id;primaryKey"`
	Content   string          `gorm:"column:content"`
	Title     string          `gorm:"column:title"`
	Source    string          `gorm:"column:source"`
	Metadata  string          `gorm:"column:metadata"`
	Embedding pgvector.Vector `gorm:"column:embedding"`
}

type pgSearchRow struct {
	ID       string
	Content  string
	Title    string
	Source   string
	Metadata string
	Score    float64
}

// NewPgvectorStore 连接 PostgreSQL，确保扩展、表与 ivfflat 索引存在
func NewPgvectorStore(ctx context.Context, cfg Config) (*PgvectorStore, error) {
	pc := cfg.Postgres
	if pc.DSN == "" {
		return nil, fmt.Errorf("postgres.dsn is required but not found in config file")
	}
	if pc.Lists <= 0 {
		pc.Lists = defaultLists
	}
	if pc.Probes <= 0 {
		pc.Probes = pc.Lists
	}

	db, err := gorm.Open(postgres.Open(pc.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	p := &PgvectorStore{
		db:     db,
		table:  cfg.Collection,
		dim:    cfg.Dimension,
		probes: pc.Probes,
	}
	if err := p.ensureTable(ctx, pc.Lists); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return p, nil
}

// ensureTable 集合名已通过 ValidateCollectionName 校验，可直接拼入 DDL
func (p *PgvectorStore) ensureTable(ctx context.Context, lists int) error {
	db := p.db.WithContext(ctx)
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	createTableSQL := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s VARCHAR(256) PRIMARY KEY,
	%s TEXT NOT NULL,
	%s VARCHAR(%d) NOT NULL DEFAULT '',
	%s VARCHAR(%d) NOT NULL DEFAULT '',
	%s TEXT NOT NULL DEFAULT '{}',
	%s vector(%d) NOT NULL
)`, p.table, FieldID, FieldContent, FieldTitle, MaxTextLen, FieldSource, MaxTextLen, FieldMetadata, FieldEmbedding, p.dim)
	if err := db.Exec(createTableSQL).Error; err != nil {
		return fmt.Errorf("failed to create table %s: %w", p.table, err)
	}

	indexSQL := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_embedding_idx ON %s USING ivfflat (%s vector_cosine_ops) WITH (lists = %d)",
		p.table, p.table, FieldEmbedding, lists)
	if err := db.Exec(indexSQL).Error; err != nil {
		return fmt.Errorf("failed to create vector index on %s: %w", p.table, err)
	}

	g.Log().Infof(ctx, "Postgres table '%s' ready with ivfflat index (lists=%d)", p.table, lists)
	return nil
}

// Upsert 在单个事务内写入，ON CONFLICT 覆盖同 ID 的行
func (p *PgvectorStore) Upsert(ctx context.Context, docs []schema.Document) (bool, error) {
	if len(docs) == 0 {
		return true, nil
	}
	if err := checkDocs(docs, p.dim); err != nil {
		g.Log().Errorf(ctx, "Postgres upsert rejected: %v", err)
		return false, errors.Wrapf(err, errors.ErrVectorInsert, "invalid documents")
	}

	rows := make([]pgDocument, 0, len(docs))
	for _, doc := range docs {
		meta, err := schema.EncodeMetadata(doc.Metadata)
		if err != nil {
			g.Log().Errorf(ctx, "Postgres upsert rejected: document %s: %v", doc.ID, err)
			return false, errors.Wrapf(err, errors.ErrMetadataInvalid, "document %s", doc.ID)
		}
		rows = append(rows, pgDocument{
			ID:        doc.ID,
			Content:   doc.Content,
			Title:     doc.Title,
			Source:    doc.Source,
			Metadata:  meta,
			Embedding: pgvector.NewVector(doc.Embedding),
		})
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Table(p.table).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: FieldID}}, UpdateAll: true}).
			Create(&rows).Error
	})
	if err != nil {
		g.Log().Errorf(ctx, "Postgres upsert into '%s' failed: %v", p.table, err)
		return false, errors.Wrapf(err, errors.ErrVectorInsert, "failed to upsert %d documents", len(docs))
	}

	g.Log().Infof(ctx, "Successfully upserted %d documents into table '%s'", len(rows), p.table)
	return true, nil
}

// SearchSimilar 按余弦距离排序，分数为 1 - 距离
func (p *PgvectorStore) SearchSimilar(ctx context.Context, vector []float32, limit int) ([]schema.SearchResult, error) {
	if limit <= 0 {
		return []schema.SearchResult{}, nil
	}
	if len(vector) != p.dim {
		err := &dimensionError{id: "query", got: len(vector), want: p.dim}
		g.Log().Errorf(ctx, "Postgres search rejected: %v", err)
		return []schema.SearchResult{}, errors.Wrapf(err, errors.ErrVectorSearch, "invalid query vector")
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	query := pgvector.NewVector(vector)
	searchSQL := fmt.Sprintf(`SELECT %s AS id, %s AS content, %s AS title, %s AS source, %s AS metadata, 1 - (%s <=> ?) AS score
FROM %s ORDER BY %s <=> ? LIMIT ?`,
		FieldID, FieldContent, FieldTitle, FieldSource, FieldMetadata, FieldEmbedding, p.table, FieldEmbedding)

	var rows []pgSearchRow
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(fmt.Sprintf("SET LOCAL ivfflat.probes = %d", p.probes)).Error; err != nil {
			return err
		}
		return tx.Raw(searchSQL, query, query, limit).Scan(&rows).Error
	})
	if err != nil {
		g.Log().Errorf(ctx, "Postgres search in '%s' failed: %v", p.table, err)
		return []schema.SearchResult{}, errors.Wrapf(err, errors.ErrVectorSearch, "search failed")
	}

	out := make([]schema.SearchResult, 0, len(rows))
	for _, r := range rows {
		meta, err := schema.DecodeMetadata(r.Metadata)
		if err != nil {
			g.Log().Warningf(ctx, "Ignoring invalid metadata of document %s: %v", r.ID, err)
			meta = schema.Metadata{}
		}
		out = append(out, schema.SearchResult{
			ID:       r.ID,
			Content:  r.Content,
			Title:    r.Title,
			Source:   r.Source,
			Metadata: meta,
			Score:    r.Score,
		})
	}
	schema.SortByScore(out)
	return out, nil
}

// Delete 按 ID 删除，不存在的 ID 视为成功
func (p *PgvectorStore) Delete(ctx context.Context, id string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	result := p.db.WithContext(ctx).Exec(fmt.Sprintf("DELETE FROM %s WHERE %s = ?", p.table, FieldID), id)
	if result.Error != nil {
		g.Log().Errorf(ctx, "Postgres delete of %s failed: %v", id, result.Error)
		return false, errors.Wrapf(result.Error, errors.ErrVectorDelete, "failed to delete document %s", id)
	}
	if result.RowsAffected == 0 {
		g.Log().Infof(ctx, "No document was deleted for id=%s", id)
	}
	return true, nil
}

// Stats 表名与行数
func (p *PgvectorStore) Stats(ctx context.Context) (schema.CollectionStats, error) {
	stats := schema.CollectionStats{Name: p.table}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if err := p.db.WithContext(ctx).Table(p.table).Count(&stats.DocumentCount).Error; err != nil {
		g.Log().Errorf(ctx, "Postgres count of '%s' failed: %v", p.table, err)
		return stats, errors.Wrapf(err, errors.ErrVectorSearch, "failed to count documents")
	}
	return stats, nil
}

// Close 关闭连接池
func (p *PgvectorStore) Close(context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
