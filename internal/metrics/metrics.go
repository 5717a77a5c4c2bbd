package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

const (
	ResultSuccess = "success"
	ResultFailed  = "failed"

	OutcomeAnswered    = "answered"
	OutcomeNoDocuments = "no_documents"
	OutcomeError       = "error"
)

// Metrics RAG 服务的 Prometheus 指标
type Metrics struct {
	DocumentsIngested *prometheus.CounterVec
	BatchChunks       *prometheus.CounterVec
	RetrievalDuration prometheus.Histogram
	RetrievedResults  prometheus.Histogram
	Answers           *prometheus.CounterVec
	RerankRequests    *prometheus.CounterVec
	RerankDuration    *prometheus.HistogramVec
	EmbeddingTexts    prometheus.Counter
}

// New 返回全局指标，首次调用时注册
//
// 指标统一以 kbrag_ 为前缀:
//   - kbrag_documents_ingested_total{result}
//   - kbrag_batch_chunks_total{result}
//   - kbrag_retrieval_duration_seconds
//   - kbrag_retrieved_results
//   - kbrag_answers_total{outcome}
//   - kbrag_rerank_requests_total{mode,result}
//   - kbrag_rerank_duration_seconds{mode}
//   - kbrag_embedding_texts_total
func New() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			DocumentsIngested: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "kbrag_documents_ingested_total",
					Help: "Total number of documents submitted for ingestion",
				},
				[]string{"result"},
			),
			BatchChunks: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "kbrag_batch_chunks_total",
					Help: "Total number of batch ingestion chunks processed",
				},
				[]string{"result"},
			),
			RetrievalDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "kbrag_retrieval_duration_seconds",
					Help:    "Duration of embedding plus similarity search",
					Buckets: prometheus.DefBuckets,
				},
			),
			RetrievedResults: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "kbrag_retrieved_results",
					Help:    "Number of documents returned per retrieval",
					Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
				},
			),
			Answers: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "kbrag_answers_total",
					Help: "Total number of answer requests by outcome",
				},
				[]string{"outcome"},
			),
			RerankRequests: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "kbrag_rerank_requests_total",
					Help: "Total number of rerank requests",
				},
				[]string{"mode", "result"},
			),
			RerankDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "kbrag_rerank_duration_seconds",
					Help:    "Duration of rerank scoring",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"mode"},
			),
			EmbeddingTexts: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "kbrag_embedding_texts_total",
					Help: "Total number of texts embedded through the embedding endpoints",
				},
			),
		}
	})
	return globalMetrics
}

// ObserveSince 记录从 start 开始的耗时
func ObserveSince(o prometheus.Observer, start time.Time) {
	o.Observe(time.Since(start).Seconds())
}

// Result 将 success 转为 result 标签值
func Result(success bool) string {
	if success {
		return ResultSuccess
	}
	return ResultFailed
}
