package embedding

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/Malowking/kbrag/core/errors"
	"github.com/bytedance/sonic"
)

// HTTPEmbedder OpenAI 兼容的 /embeddings 客户端
type HTTPEmbedder struct {
	apiKey     string
	baseURL    string
	model      string
	dimension  int
	httpClient *http.Client
}

// embeddingRequest OpenAI embedding API请求结构
type embeddingRequest struct {
	Input      []string `json:"input"`
	Model      string   `json:"model"`
	Dimensions *int     `json:"dimensions,omitempty"`
}

// embeddingResponse OpenAI embedding API响应结构
type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
}

// errorResponse API错误响应
type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
	Detail string `json:"detail"`
}

func (r errorResponse) message() string {
	if r.Error.Message != "" {
		return r.Error.Message
	}
	return r.Detail
}

// NewHTTPEmbedder 创建 HTTP embedding 客户端
func NewHTTPEmbedder(cfg Config) (*HTTPEmbedder, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New(errors.ErrModelConfigInvalid, "embedding baseURL is required")
	}
	if cfg.Model == "" {
		return nil, errors.New(errors.ErrModelConfigInvalid, "embedding model is required")
	}

	httpClient := &http.Client{
		Timeout: cfg.timeout(),
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second, // 连接超时
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   30 * time.Second,
			ResponseHeaderTimeout: cfg.timeout(),
			IdleConnTimeout:       90 * time.Second,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
		},
	}

	return &HTTPEmbedder{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		dimension:  cfg.Dimension,
		httpClient: httpClient,
	}, nil
}

func (e *HTTPEmbedder) Dimension() int { return e.dimension }
func (e *HTTPEmbedder) Model() string  { return e.model }

// EmbedStrings 实现字符串数组的向量化
func (e *HTTPEmbedder) EmbedStrings(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ValidateTexts(texts); err != nil {
		return nil, err
	}

	dimensions := e.dimension
	body, err := sonic.Marshal(embeddingRequest{
		Input:      texts,
		Model:      e.model,
		Dimensions: &dimensions,
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrEmbeddingFailed, "failed to marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrEmbeddingFailed, "failed to create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrEmbeddingFailed, "failed to send request")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrEmbeddingFailed, "failed to read response")
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if err := sonic.Unmarshal(raw, &errResp); err != nil || errResp.message() == "" {
			return nil, errors.Newf(errors.ErrEmbeddingFailed, "API error (HTTP %d)", resp.StatusCode)
		}
		return nil, errors.Newf(errors.ErrEmbeddingFailed, "API error (HTTP %d): %s", resp.StatusCode, errResp.message())
	}

	var embResp embeddingResponse
	if err := sonic.Unmarshal(raw, &embResp); err != nil {
		return nil, errors.Wrapf(err, errors.ErrEmbeddingFailed, "failed to decode response")
	}
	if len(embResp.Data) != len(texts) {
		return nil, errors.Newf(errors.ErrEmbeddingFailed, "response data length (%d) doesn't match input length (%d)", len(embResp.Data), len(texts))
	}

	// 按 index 回填，保证与输入顺序一致
	result := make([][]float32, len(texts))
	for _, data := range embResp.Data {
		if data.Index < 0 || data.Index >= len(result) {
			return nil, errors.Newf(errors.ErrEmbeddingFailed, "invalid embedding index: %d", data.Index)
		}
		result[data.Index] = toFloat32(data.Embedding)
	}
	if err := checkVectors(result, len(texts), e.dimension); err != nil {
		return nil, err
	}
	return result, nil
}
