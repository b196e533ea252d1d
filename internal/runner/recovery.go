package runner

import (
	"context"
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"
)

// SafeRun 安全执行规划任务，捕获 panic 并转换为错误
func SafeRun(ctx context.Context, logger *zap.Logger, name string, fn func(context.Context) (*Result, error)) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := string(debug.Stack())
			err = fmt.Errorf("任务 %s 发生 panic: %v", name, r)

			// 记录到日志
			if logger != nil {
				logger.Error("规划任务 panic",
					zap.String("task", name),
					zap.Any("panic", r),
					zap.String("stack", stack),
				)
			}
			res = nil
		}
	}()

	return fn(ctx)
}
