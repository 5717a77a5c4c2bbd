package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/Malowking/kbrag/core/model"
	"github.com/Malowking/kbrag/internal/logic/retriever"
	"github.com/Malowking/kbrag/internal/metrics"
	"github.com/Malowking/kbrag/pkg/schema"
	"github.com/gogf/gf/v2/frame/g"
)

const (
	NoDocumentsMessage  = "No relevant documents were found."
	NoDocumentsResponse = "Sorry, I could not find any documents related to your question."
)

// Outcome 问答结果，Sources 与检索顺序一致
type Outcome struct {
	Success          bool
	Response         string
	Sources          []schema.Source
	Query            string
	SimilarityScores []float64
	Message          string
}

// Service 基于检索结果生成有来源的回答
type Service struct {
	retriever *retriever.Service
	handles   *model.Handles
	metrics   *metrics.Metrics
}

func New(r *retriever.Service, handles *model.Handles) *Service {
	return &Service{
		retriever: r,
		handles:   handles,
		metrics:   metrics.New(),
	}
}

// Answer 检索相关文档并生成回答，任何失败都转换为 Success=false 的结果
func (s *Service) Answer(ctx context.Context, query string, limit int) *Outcome {
	results, err := s.retriever.Retrieve(ctx, query, limit)
	if err != nil {
		return s.failure(ctx, query, err)
	}

	if len(results) == 0 {
		g.Log().Infof(ctx, "No documents found for question, returning canned response")
		s.metrics.Answers.WithLabelValues(metrics.OutcomeNoDocuments).Inc()
		return &Outcome{
			Success:  false,
			Response: NoDocumentsResponse,
			Sources:  []schema.Source{},
			Query:    query,
			Message:  NoDocumentsMessage,
		}
	}

	generator, err := s.handles.Generator()
	if err != nil {
		return s.failure(ctx, query, err)
	}

	prompt := BuildPrompt(query)
	contextText := BuildContext(results)
	response, err := model.RetryWithSameModel(ctx, generator.Model(), s.handles.RetryConfig(), func(ctx context.Context) (string, error) {
		return generator.Generate(ctx, prompt, contextText)
	})
	if err != nil {
		return s.failure(ctx, query, err)
	}

	scores := make([]float64, len(results))
	for i, r := range results {
		scores[i] = r.Score
	}

	s.metrics.Answers.WithLabelValues(metrics.OutcomeAnswered).Inc()
	return &Outcome{
		Success:          true,
		Response:         response,
		Sources:          schema.SourcesOf(results),
		Query:            query,
		SimilarityScores: scores,
	}
}

func (s *Service) failure(ctx context.Context, query string, err error) *Outcome {
	g.Log().Errorf(ctx, "Answering question failed: %v", err)
	s.metrics.Answers.WithLabelValues(metrics.OutcomeError).Inc()
	return &Outcome{
		Success:  false,
		Response: fmt.Sprintf("Sorry, an error occurred while processing the question: %v", err),
		Sources:  []schema.Source{},
		Query:    query,
		Message:  fmt.Sprintf("An error occurred while processing the question: %v", err),
	}
}

// BuildContext 按排名拼接文档内容，每段以 "Document k:" 开头
func BuildContext(results []schema.SearchResult) string {
	parts := make([]string, 0, len(results))
	for i, r := range results {
		parts = append(parts, fmt.Sprintf("Document %d:\n%s\n", i+1, r.Content))
	}
	return strings.Join(parts, "\n")
}

// BuildPrompt 要求模型只依据上下文作答
func BuildPrompt(query string) string {
	return fmt.Sprintf(`Answer the question using the documents provided as context.
Base the answer only on the information in those documents and do not speculate about anything they do not contain.
After answering, name the documents you relied on.

Question: %s
Answer:`, query)
}
