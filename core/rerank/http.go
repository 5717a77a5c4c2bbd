package rerank

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/Malowking/kbrag/core/common"
	"github.com/Malowking/kbrag/core/errors"
	"github.com/bytedance/sonic"
	"golang.org/x/sync/errgroup"
)

const (
	AggregateMax  = "max"
	AggregateMean = "mean"

	// subChunkBatchSize 每次请求携带的子切片数
	subChunkBatchSize = 30
)

// HTTPScorer 调用 /rerank 接口（Jina/Cohere/TEI 兼容）的打分器
type HTTPScorer struct {
	apiKey     string
	baseURL    string
	model      string
	subChunk   int
	overlap    int
	aggregate  string
	httpClient *http.Client
}

// rerankRequest rerank API请求结构
type rerankRequest struct {
	Model           string   `json:"model,omitempty"`
	Query           string   `json:"query"`
	Documents       []string `json:"documents"`
	TopN            int      `json:"top_n"`
	ReturnDocuments bool     `json:"return_documents"`
}

// rerankResponse rerank API响应结构
type rerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

// rerankErrorResponse API错误响应
type rerankErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail string `json:"detail"`
}

// NewHTTPScorer 创建 HTTP 打分器
func NewHTTPScorer(cfg Config) (*HTTPScorer, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New(errors.ErrModelConfigInvalid, "rerank baseURL is required")
	}
	model := cfg.Model
	if model == "" {
		model = "rerank-v1"
	}
	timeout := 2 * time.Minute
	if cfg.TimeoutSec > 0 {
		timeout = time.Duration(cfg.TimeoutSec) * time.Second
	}
	aggregate := strings.ToLower(cfg.Aggregate)
	if aggregate != AggregateMean {
		aggregate = AggregateMax
	}

	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   30 * time.Second,
			ResponseHeaderTimeout: 60 * time.Second,
			IdleConnTimeout:       90 * time.Second,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   20, // 子切片批次并发请求
		},
	}

	return &HTTPScorer{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      model,
		subChunk:   cfg.SubChunkSize,
		overlap:    cfg.SubChunkOverlap,
		aggregate:  aggregate,
		httpClient: httpClient,
	}, nil
}

func (r *HTTPScorer) Model() string { return r.model }

// Score 返回每个文档的相关性分数
func (r *HTTPScorer) Score(ctx context.Context, query string, documents []string) ([]float64, error) {
	if len(documents) == 0 {
		return []float64{}, nil
	}
	if r.subChunk <= 0 {
		return r.call(ctx, query, documents)
	}
	return r.scoreWithSubChunks(ctx, query, documents)
}

// scoreWithSubChunks 长文档按滑窗切分后分批并行打分，再按文档聚合
func (r *HTTPScorer) scoreWithSubChunks(ctx context.Context, query string, documents []string) ([]float64, error) {
	var (
		contents []string
		owners   []int
	)
	for i, doc := range documents {
		for _, sub := range SplitIntoSubChunks(doc, r.subChunk, r.overlap) {
			contents = append(contents, sub)
			owners = append(owners, i)
		}
	}

	subScores := make([]float64, len(contents))
	g, gCtx := errgroup.WithContext(ctx)
	for start := 0; start < len(contents); start += subChunkBatchSize {
		start := start
		end := start + subChunkBatchSize
		if end > len(contents) {
			end = len(contents)
		}
		g.Go(common.Guard(ctx, "rerank-sub-chunks", func() error {
			scores, err := r.call(gCtx, query, contents[start:end])
			if err != nil {
				return err
			}
			copy(subScores[start:end], scores)
			return nil
		}))
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	perDoc := make([][]float64, len(documents))
	for i, owner := range owners {
		perDoc[owner] = append(perDoc[owner], subScores[i])
	}
	out := make([]float64, len(documents))
	for i, scores := range perDoc {
		out[i] = aggregateScores(scores, r.aggregate)
	}
	return out, nil
}

// call 单次请求，top_n 取全部文档以拿到每个文档的分数
func (r *HTTPScorer) call(ctx context.Context, query string, documents []string) ([]float64, error) {
	body, err := sonic.Marshal(rerankRequest{
		Model:           r.model,
		Query:           query,
		Documents:       documents,
		TopN:            len(documents),
		ReturnDocuments: false,
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrRerankFailed, "failed to marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrRerankFailed, "failed to create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrRerankFailed, "failed to send request")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrRerankFailed, "failed to read response")
	}
	if resp.StatusCode != http.StatusOK {
		var errResp rerankErrorResponse
		_ = sonic.Unmarshal(raw, &errResp)
		msg := errResp.Error.Message
		if msg == "" {
			msg = errResp.Detail
		}
		return nil, errors.Newf(errors.ErrRerankFailed, "API error (HTTP %d): %s", resp.StatusCode, msg)
	}

	var rerankResp rerankResponse
	if err := sonic.Unmarshal(raw, &rerankResp); err != nil {
		return nil, errors.Wrapf(err, errors.ErrRerankFailed, "failed to decode response")
	}

	scores := make([]float64, len(documents))
	seen := make([]bool, len(documents))
	for _, res := range rerankResp.Results {
		if res.Index < 0 || res.Index >= len(documents) {
			return nil, errors.Newf(errors.ErrRerankFailed, "invalid result index: %d", res.Index)
		}
		scores[res.Index] = res.RelevanceScore
		seen[res.Index] = true
	}
	for i, ok := range seen {
		if !ok {
			return nil, errors.Newf(errors.ErrRerankFailed, "missing score for document %d", i)
		}
	}
	return scores, nil
}

// SplitIntoSubChunks 按字符滑窗切分文档
func SplitIntoSubChunks(content string, subChunkSize, overlapSize int) []string {
	runes := []rune(content)
	if subChunkSize <= 0 || len(runes) <= subChunkSize {
		return []string{content}
	}

	step := subChunkSize - overlapSize
	if step <= 0 {
		step = subChunkSize
	}

	var subChunks []string
	for start := 0; start < len(runes); start += step {
		end := start + subChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		subChunks = append(subChunks, string(runes[start:end]))
		if end >= len(runes) {
			break
		}
	}
	return subChunks
}

func aggregateScores(scores []float64, strategy string) float64 {
	if len(scores) == 0 {
		return 0
	}
	if strategy == AggregateMean {
		sum := 0.0
		for _, s := range scores {
			sum += s
		}
		return sum / float64(len(scores))
	}
	maxVal := scores[0]
	for _, s := range scores[1:] {
		if s > maxVal {
			maxVal = s
		}
	}
	return maxVal
}
