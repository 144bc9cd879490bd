package workflow

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/flowkit/types"
)

// Fallback 回退工作流
// 先执行主工作流；失败时执行备用工作流并返回备用的结果。
// 备用成功时主工作流的错误被丢弃：最终结果只反映最后执行的分支
type Fallback struct {
	base
	primary   Workflow
	secondary Workflow
}

// NewFallback 创建回退工作流
func NewFallback(name string, primary, secondary Workflow, opts ...Option) (*Fallback, error) {
	if primary == nil {
		return nil, types.Errorf(types.ErrMissingChild, "workflow %s: primary is required", name)
	}
	if secondary == nil {
		return nil, types.Errorf(types.ErrMissingChild, "workflow %s: secondary is required", name)
	}
	return &Fallback{
		base:      newBase(name, TypeFallback, opts...),
		primary:   primary,
		secondary: secondary,
	}, nil
}

// Execute 执行主工作流，失败时切换到备用工作流
func (w *Fallback) Execute(ctx context.Context, wc *Context) *Result {
	return Run(wc, w.name, func(start time.Time) *Result {
		res := w.primary.Execute(ctx, wc)
		if res.Succeeded() {
			return res
		}

		w.logger.Debug("primary failed, executing fallback",
			zap.String("workflow", w.name),
			zap.String("primary", w.primary.Name()),
			zap.Error(res.Err),
		)
		return w.secondary.Execute(ctx, wc)
	})
}

// Children 返回主、备工作流
func (w *Fallback) Children() []Workflow {
	return []Workflow{w.primary, w.secondary}
}
