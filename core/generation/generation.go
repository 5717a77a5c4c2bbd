package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Malowking/kbrag/core/errors"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino-ext/components/model/qwen"
	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

const (
	ProviderOpenAI = "openai"
	ProviderQwen   = "qwen"
)

// Generator 生成网关，根据 (prompt, context) 生成回答
type Generator interface {
	Generate(ctx context.Context, prompt, contextText string) (string, error)
	Model() string
}

// Config chat 模型配置
type Config struct {
	Provider    string  `json:"provider"`
	BaseURL     string  `json:"baseURL"`
	APIKey      string  `json:"apiKey"`
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"maxTokens"`
	TimeoutSec  int     `json:"timeoutSec"`
	// MaxRetries 同一模型的最大尝试次数
	MaxRetries int `json:"maxRetries"`
	// RetryDelayMs 重试间隔（毫秒）
	RetryDelayMs int `json:"retryDelayMs"`
}

func (c Config) timeout() time.Duration {
	if c.TimeoutSec <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(c.TimeoutSec) * time.Second
}

// ChatGenerator 基于 eino ChatModel 的生成网关
type ChatGenerator struct {
	chat  einoModel.BaseChatModel
	model string
}

// New 按 provider 创建 eino ChatModel
func New(ctx context.Context, cfg Config) (*ChatGenerator, error) {
	if cfg.Model == "" {
		return nil, errors.New(errors.ErrModelConfigInvalid, "chat model is required")
	}

	var temperature *float32
	if cfg.Temperature > 0 {
		t := cfg.Temperature
		temperature = &t
	}
	var maxTokens *int
	if cfg.MaxTokens > 0 {
		m := cfg.MaxTokens
		maxTokens = &m
	}

	var (
		cm  einoModel.BaseChatModel
		err error
	)
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderOpenAI:
		cm, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Timeout:     cfg.timeout(),
			Temperature: temperature,
			MaxTokens:   maxTokens,
		})
	case ProviderQwen:
		cm, err = qwen.NewChatModel(ctx, &qwen.ChatModelConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Timeout:     cfg.timeout(),
			Temperature: temperature,
			MaxTokens:   maxTokens,
		})
	default:
		return nil, errors.Newf(errors.ErrModelConfigInvalid, "unsupported chat provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrModelConfigInvalid, "failed to create chat model %s", cfg.Model)
	}
	return NewWithChatModel(cm, cfg.Model), nil
}

// NewWithChatModel 使用已有的 ChatModel 创建生成网关
func NewWithChatModel(cm einoModel.BaseChatModel, modelName string) *ChatGenerator {
	return &ChatGenerator{chat: cm, model: modelName}
}

func (x *ChatGenerator) Model() string { return x.model }

// Generate 将上下文放入 system 消息，问题作为 user 消息
func (x *ChatGenerator) Generate(ctx context.Context, prompt, contextText string) (string, error) {
	messages := BuildMessages(prompt, contextText)
	resp, err := x.chat.Generate(ctx, messages)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrLLMCallFailed, "chat model %s", x.model)
	}
	if resp == nil {
		return "", errors.Newf(errors.ErrLLMCallFailed, "chat model %s returned no message", x.model)
	}
	return resp.Content, nil
}

// BuildMessages 组装发送给模型的消息
func BuildMessages(prompt, contextText string) []*schema.Message {
	if contextText == "" {
		return []*schema.Message{schema.UserMessage(prompt)}
	}
	system := fmt.Sprintf("Use the following context to answer the user's question.\n\nContext:\n%s", contextText)
	return []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(prompt),
	}
}
