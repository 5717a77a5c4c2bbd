package model

import (
	"context"
	"time"

	"github.com/Malowking/kbrag/core/errors"
	"github.com/gogf/gf/v2/frame/g"
)

// RetryConfig 单个模型重试配置
type RetryConfig struct {
	MaxRetries int           // 最大尝试次数
	RetryDelay time.Duration // 重试延迟
}

// DefaultRetryConfig 默认重试配置
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries: 3,                      // 默认最多尝试3次
		RetryDelay: 500 * time.Millisecond, // 默认延迟500ms
	}
}

// RetryWithSameModel 使用同一个模型重试，所有尝试失败后返回 ErrLLMCallFailed
func RetryWithSameModel[T any](ctx context.Context, modelName string, config *RetryConfig, callFunc func(context.Context) (T, error)) (T, error) {
	if config == nil {
		config = DefaultRetryConfig()
	}
	attempts := config.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var (
		zero    T
		lastErr error
	)
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			g.Log().Infof(ctx, "[模型重试] 尝试 %d/%d: 重试模型 %s", attempt+1, attempts, modelName)
		}

		result, err := callFunc(ctx)
		if err == nil {
			if attempt > 0 {
				g.Log().Infof(ctx, "[模型重试] 成功: 模型 %s 在第 %d 次尝试成功", modelName, attempt+1)
			}
			return result, nil
		}

		lastErr = err
		g.Log().Warningf(ctx, "[模型重试] 失败: 模型 %s, 尝试 %d/%d, 错误: %v", modelName, attempt+1, attempts, err)

		if attempt < attempts-1 {
			select {
			case <-ctx.Done():
				return zero, errors.Wrapf(ctx.Err(), errors.ErrLLMCallFailed, "model %s call aborted", modelName)
			case <-time.After(config.RetryDelay):
			}
		}
	}

	return zero, errors.Wrapf(lastErr, errors.ErrLLMCallFailed, "model %s call failed after %d attempts", modelName, attempts)
}
