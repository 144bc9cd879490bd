package workflow

import (
	"context"
	"sort"
	"time"

	"github.com/BaSui01/flowkit/types"
)

// Selector 路由决策函数
// 基于执行上下文返回路由键
type Selector func(ctx context.Context, wc *Context) (string, error)

// Routing 动态分支工作流
// 使用选择器得到路由键，分发到匹配的命名分支；无匹配时走默认分支；
// 两者都缺失属于配置错误，以失败结果呈现
type Routing struct {
	base
	selector      Selector
	branches      map[string]Workflow
	defaultBranch Workflow
}

// NewRouting 创建动态分支工作流
// defaultBranch 可以为 nil
func NewRouting(name string, selector Selector, branches map[string]Workflow, defaultBranch Workflow, opts ...Option) (*Routing, error) {
	if selector == nil {
		return nil, types.Errorf(types.ErrInvalidConfig, "workflow %s: selector is required", name)
	}
	if len(branches) == 0 && defaultBranch == nil {
		return nil, types.Errorf(types.ErrInvalidConfig, "workflow %s: at least one branch is required", name)
	}
	copied := make(map[string]Workflow, len(branches))
	for key, branch := range branches {
		if branch == nil {
			return nil, types.Errorf(types.ErrMissingChild, "workflow %s: branch %q is nil", name, key)
		}
		copied[key] = branch
	}
	return &Routing{
		base:          newBase(name, TypeRouting, opts...),
		selector:      selector,
		branches:      copied,
		defaultBranch: defaultBranch,
	}, nil
}

// Execute 执行路由工作流
// 1. 选择器决策路由键
// 2. 查找命名分支，未命中时回退到默认分支
// 3. 执行选中的分支
func (w *Routing) Execute(ctx context.Context, wc *Context) *Result {
	return Run(wc, w.name, func(start time.Time) *Result {
		key, err := w.selector(ctx, wc)
		if err != nil {
			return Failure(start, types.NewError(types.ErrTaskFailed, "branch selection failed").
				WithCause(err).WithWorkflow(w.name))
		}

		branch, ok := w.branches[key]
		if !ok {
			branch = w.defaultBranch
		}
		if branch == nil {
			return Failure(start, types.Errorf(types.ErrNoBranch, "no branch for key %q and no default branch", key).
				WithWorkflow(w.name))
		}
		return branch.Execute(ctx, wc)
	})
}

// Children 返回所有分支（命名分支按键排序，默认分支在末尾）
func (w *Routing) Children() []Workflow {
	keys := make([]string, 0, len(w.branches))
	for key := range w.branches {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	children := make([]Workflow, 0, len(keys)+1)
	for _, key := range keys {
		children = append(children, w.branches[key])
	}
	if w.defaultBranch != nil {
		children = append(children, w.defaultBranch)
	}
	return children
}

// Routes 返回所有已注册的路由键
func (w *Routing) Routes() []string {
	keys := make([]string, 0, len(w.branches))
	for key := range w.branches {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
