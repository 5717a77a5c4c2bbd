package schema

import "sort"

// Document 可检索的文档单元
type Document struct {
	// ID 文档唯一标识，缺省时由入库流程分配
	ID string `json:"id,omitempty"`
	// Content 文档内容，向量化的来源
	Content string `json:"content"`
	Title   string `json:"title,omitempty"`
	Source  string `json:"source,omitempty"`
	// Metadata 透传的元数据，检索逻辑不解释其内容
	Metadata Metadata `json:"metadata,omitempty"`
	// Embedding 入库时计算的向量，不对外序列化
	Embedding []float32 `json:"-"`
}

// SearchResult 相似度检索结果
type SearchResult struct {
	ID       string   `json:"id"`
	Content  string   `json:"content"`
	Title    string   `json:"title"`
	Source   string   `json:"source"`
	Metadata Metadata `json:"metadata"`
	// Score 余弦相似度，越大越相关
	Score float64 `json:"score"`
}

// Source 回答引用的来源
type Source struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// RerankResult 重排序结果
type RerankResult struct {
	// DocumentIndex 文档在输入列表中的下标
	DocumentIndex  int     `json:"document_index"`
	Document       string  `json:"document"`
	RelevanceScore float64 `json:"relevance_score"`
	// Rank 排序后的名次，从 1 开始
	Rank int `json:"rank"`
}

// BatchOutcome 批量入库统计
type BatchOutcome struct {
	TotalDocuments     int `json:"total_documents"`
	ProcessedDocuments int `json:"processed_documents"`
	FailedDocuments    int `json:"failed_documents"`
}

// CollectionStats 集合统计信息
type CollectionStats struct {
	Name          string `json:"name"`
	DocumentCount int64  `json:"documents_count"`
}

// SortByScore 按得分降序稳定排序，同分保持原有顺序
func SortByScore(results []SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}

// SourcesOf 按检索顺序生成来源列表
func SourcesOf(results []SearchResult) []Source {
	sources := make([]Source, 0, len(results))
	for _, r := range results {
		sources = append(sources, Source{
			ID:     r.ID,
			Title:  r.Title,
			Source: r.Source,
			Score:  r.Score,
		})
	}
	return sources
}
