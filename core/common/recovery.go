package common

import (
	"context"
	"runtime/debug"

	"github.com/Malowking/kbrag/core/errors"
	"github.com/gogf/gf/v2/frame/g"
)

// RecoverPanic 通用 panic 恢复函数
// 在 defer 中调用，捕获并记录 panic 信息（包含完整堆栈）
func RecoverPanic(ctx context.Context, taskName string) {
	if r := recover(); r != nil {
		g.Log().Criticalf(ctx,
			"[PANIC RECOVERED] Task: %s\nError: %v\nStack Trace:\n%s",
			taskName, r, string(debug.Stack()))
	}
}

// Guard 包装 errgroup 任务，panic 被记录并转换为 ErrInternalError 返回
//
// 使用示例:
//
//	eg.Go(common.Guard(ctx, "rerank-query", func() error {
//	    return score(ctx)
//	}))
func Guard(ctx context.Context, taskName string, fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				g.Log().Criticalf(ctx,
					"[PANIC RECOVERED] Task: %s\nError: %v\nStack Trace:\n%s",
					taskName, r, string(debug.Stack()))
				err = errors.Newf(errors.ErrInternalError, "panic in task %s: %v", taskName, r)
			}
		}()
		return fn()
	}
}
