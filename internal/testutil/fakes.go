// Package testutil 提供服务层测试使用的确定性模型替身
package testutil

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
	"testing"
	"unicode"

	"github.com/Malowking/kbrag/core/errors"
	"github.com/Malowking/kbrag/core/vector_store"
)

// HashDimension HashEmbedder 输出的向量维度
const HashDimension = 64

// HashEmbedder 词袋哈希向量化，相同文本得到相同向量
//
// 最后一维固定为 1，保证向量非零。
type HashEmbedder struct {
	mu    sync.Mutex
	Calls int
	Err   error
}

func (h *HashEmbedder) EmbedStrings(_ context.Context, texts []string) ([][]float32, error) {
	h.mu.Lock()
	h.Calls++
	err := h.Err
	h.mu.Unlock()
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrEmbeddingFailed, "embedding backend")
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, HashDimension)
		for _, word := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		}) {
			f := fnv.New32a()
			_, _ = f.Write([]byte(word))
			vec[f.Sum32()%(HashDimension-1)]++
		}
		vec[HashDimension-1] = 1
		out[i] = vec
	}
	return out, nil
}

func (h *HashEmbedder) Dimension() int { return HashDimension }
func (h *HashEmbedder) Model() string  { return "hash-embedder" }

// Generator 记录调用参数并返回固定回答
type Generator struct {
	mu          sync.Mutex
	Reply       string
	Err         error
	Calls       int
	LastPrompt  string
	LastContext string
}

func (g *Generator) Generate(_ context.Context, prompt, contextText string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Calls++
	g.LastPrompt = prompt
	g.LastContext = contextText
	if g.Err != nil {
		return "", errors.Wrapf(g.Err, errors.ErrLLMCallFailed, "generation backend")
	}
	return g.Reply, nil
}

func (g *Generator) Model() string { return "fake-llm" }

// Scorer 按文档内容查表打分，未配置的文档得 0 分
type Scorer struct {
	Scores map[string]float64
	// FailOn 查询等于该值时返回错误
	FailOn string
}

func (s *Scorer) Score(_ context.Context, query string, documents []string) ([]float64, error) {
	if s.FailOn != "" && query == s.FailOn {
		return nil, errors.Newf(errors.ErrRerankFailed, "scorer failed for query %q", query)
	}
	out := make([]float64, len(documents))
	for i, d := range documents {
		out[i] = s.Scores[d]
	}
	return out, nil
}

func (s *Scorer) Model() string { return "fake-reranker" }

// NewStore 创建内存 chromem 向量库
func NewStore(t *testing.T) vector_store.Store {
	t.Helper()
	store, err := vector_store.NewStore(context.Background(), vector_store.Config{
		Type:       vector_store.VectorStoreTypeChromem,
		Collection: "test_documents",
		Dimension:  HashDimension,
	})
	if err != nil {
		t.Fatalf("failed to create chromem store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}
