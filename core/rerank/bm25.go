package rerank

import (
	"context"
	"math"
	"strings"
	"unicode"
)

// BM25Parameters BM25 参数
type BM25Parameters struct {
	K1 float64 // 词频饱和参数，默认 1.5
	B  float64 // 长度归一化参数，默认 0.75
}

// DefaultBM25Parameters 默认 BM25 参数
func DefaultBM25Parameters() BM25Parameters {
	return BM25Parameters{
		K1: 1.5,
		B:  0.75,
	}
}

// BM25Scorer 以候选文档集合为语料的 BM25 打分器，不依赖模型服务
type BM25Scorer struct {
	params BM25Parameters
}

// NewBM25Scorer 创建 BM25 打分器
func NewBM25Scorer(params BM25Parameters) *BM25Scorer {
	return &BM25Scorer{params: params}
}

func (s *BM25Scorer) Model() string { return "bm25" }

// Score 计算 query 对每个候选文档的 BM25 分数
func (s *BM25Scorer) Score(ctx context.Context, query string, documents []string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	totalDocs := len(documents)
	docFreq := make(map[string]int)
	docTermFreq := make([]map[string]int, totalDocs)
	docLengths := make([]int, totalDocs)

	totalLen := 0
	for i, doc := range documents {
		terms := tokenize(doc)
		docLengths[i] = len(terms)
		totalLen += len(terms)

		termFreq := make(map[string]int)
		for _, term := range terms {
			termFreq[term]++
		}
		docTermFreq[i] = termFreq
		for term := range termFreq {
			docFreq[term]++
		}
	}

	avgDocLen := 0.0
	if totalDocs > 0 {
		avgDocLen = float64(totalLen) / float64(totalDocs)
	}

	queryTerms := tokenize(query)
	scores := make([]float64, totalDocs)
	for i := 0; i < totalDocs; i++ {
		score := 0.0
		docLen := float64(docLengths[i])
		for _, term := range queryTerms {
			tf, ok := docTermFreq[i][term]
			if !ok {
				continue
			}
			df := docFreq[term]
			idf := math.Log(1.0 + (float64(totalDocs)-float64(df)+0.5)/(float64(df)+0.5))

			// IDF * (tf * (k1 + 1)) / (tf + k1 * (1 - b + b * (docLen / avgDocLen)))
			numerator := float64(tf) * (s.params.K1 + 1.0)
			denominator := float64(tf) + s.params.K1*(1.0-s.params.B+s.params.B*(docLen/avgDocLen))
			score += idf * (numerator / denominator)
		}
		scores[i] = score
	}
	return scores, nil
}

// tokenize 按字母数字切词并转小写
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
