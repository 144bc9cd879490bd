package workflow

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sequential 顺序工作流
// 按声明顺序执行子工作流，首个失败即停止（fail-fast）
type Sequential struct {
	base
	children []Workflow
}

// NewSequential 创建顺序工作流
// 空子列表是合法的：执行时直接返回成功
func NewSequential(name string, children []Workflow, opts ...Option) (*Sequential, error) {
	if err := validateChildren(name, children); err != nil {
		return nil, err
	}
	return &Sequential{
		base:     newBase(name, TypeSequential, opts...),
		children: children,
	}, nil
}

// Execute 按顺序执行每个子工作流
// 返回首个失败子工作流的结果；全部成功时返回成功结果
func (w *Sequential) Execute(ctx context.Context, wc *Context) *Result {
	return Run(wc, w.name, func(start time.Time) *Result {
		for _, child := range w.children {
			if err := ctx.Err(); err != nil {
				return Failure(start, cancelled(w.name, err))
			}

			res := child.Execute(ctx, wc)
			if res.Failed() {
				w.logger.Debug("sequential child failed",
					zap.String("workflow", w.name),
					zap.String("child", child.Name()),
					zap.Error(res.Err),
				)
				return res
			}
		}
		return Success(start)
	})
}

// Children 返回直接子工作流
func (w *Sequential) Children() []Workflow {
	return w.children
}
