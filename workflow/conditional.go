package workflow

import (
	"context"
	"time"

	"github.com/BaSui01/flowkit/types"
)

// Predicate 条件谓词
// 基于执行上下文决定走哪个分支
type Predicate func(ctx context.Context, wc *Context) bool

// Conditional 条件工作流
// 根据谓词选择 true/false 分支；被选中的分支缺失时视为空操作，返回成功
type Conditional struct {
	base
	predicate Predicate
	whenTrue  Workflow
	whenFalse Workflow
}

// NewConditional 创建条件工作流
// 两个分支都是可选的，但谓词必须提供
func NewConditional(name string, predicate Predicate, whenTrue, whenFalse Workflow, opts ...Option) (*Conditional, error) {
	if predicate == nil {
		return nil, types.Errorf(types.ErrInvalidConfig, "workflow %s: predicate is required", name)
	}
	return &Conditional{
		base:      newBase(name, TypeConditional, opts...),
		predicate: predicate,
		whenTrue:  whenTrue,
		whenFalse: whenFalse,
	}, nil
}

// Execute 评估谓词并执行对应分支
func (w *Conditional) Execute(ctx context.Context, wc *Context) *Result {
	return Run(wc, w.name, func(start time.Time) *Result {
		branch := w.whenFalse
		if w.predicate(ctx, wc) {
			branch = w.whenTrue
		}
		if branch == nil {
			return Success(start)
		}
		return branch.Execute(ctx, wc)
	})
}

// Children 返回已配置的分支
func (w *Conditional) Children() []Workflow {
	children := make([]Workflow, 0, 2)
	if w.whenTrue != nil {
		children = append(children, w.whenTrue)
	}
	if w.whenFalse != nil {
		children = append(children, w.whenFalse)
	}
	return children
}
