package workflow

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/flowkit/types"
)

// Type 工作流变体类型标签
type Type string

const (
	TypeTask        Type = "task"
	TypeSequential  Type = "sequential"
	TypeParallel    Type = "parallel"
	TypeConditional Type = "conditional"
	TypeRouting     Type = "routing"
	TypeFallback    Type = "fallback"
	TypeRepeat      Type = "repeat"
	TypeForEach     Type = "foreach"
	TypeRateLimited Type = "rate_limited"
	TypeTimeout     Type = "timeout"
	TypeChaos       Type = "chaos"
	TypeSaga        Type = "saga"
)

// Workflow 工作流接口
// 结构在构建后不可变，Execute 只读写传入的 Context
type Workflow interface {
	// Execute 执行工作流。业务失败被捕获进返回的 Result，不会抛出
	Execute(ctx context.Context, wc *Context) *Result
	// Name 返回工作流名称
	Name() string
	// Type 返回变体类型标签
	Type() Type
}

// Container 容器工作流接口
// 暴露直接子工作流，供树形渲染等外部诊断工具使用
type Container interface {
	Workflow
	Children() []Workflow
}

// Option 配置内建工作流变体的公共属性
type Option func(*base)

// WithLogger 设置自定义 zap 日志器（默认 zap.NewNop()）
func WithLogger(logger *zap.Logger) Option {
	return func(b *base) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// base 内建变体共享的标识字段
type base struct {
	name   string
	typ    Type
	logger *zap.Logger
}

func newBase(name string, typ Type, opts ...Option) base {
	if name == "" {
		name = string(typ)
	}
	b := base{
		name:   name,
		typ:    typ,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *base) Name() string { return b.name }

func (b *base) Type() Type { return b.typ }

// Run 以引擎约定执行 body：触发监听器回调、将 panic 翻译为失败结果、
// 兜底 nil 结果。内建变体和外部自定义变体（如 saga）都通过它执行。
func Run(wc *Context, name string, body func(start time.Time) *Result) *Result {
	start := time.Now()
	wc.fireStart(name)

	res := guard(start, name, body)
	if res == nil {
		res = Failure(start, types.Errorf(types.ErrNilResult, "workflow %s produced no result", name).WithWorkflow(name))
	}

	if res.Succeeded() {
		wc.fireSuccess(name, res)
	} else {
		wc.fireFailure(name, res)
	}
	return res
}

// guard 执行 body 并把 panic 翻译为 FAILED 结果
func guard(start time.Time, name string, body func(start time.Time) *Result) (res *Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Failure(start, types.Errorf(types.ErrTaskPanic, "workflow %s panicked: %v", name, r).WithWorkflow(name))
		}
	}()
	return body(start)
}

// validateChildren 构建期校验：子工作流不允许为 nil
func validateChildren(name string, children []Workflow) error {
	for i, child := range children {
		if child == nil {
			return types.Errorf(types.ErrMissingChild, "workflow %s: child %d is nil", name, i)
		}
	}
	return nil
}

// cancelled 将 context 取消翻译为统一的失败错误
func cancelled(name string, err error) *types.Error {
	return types.NewError(types.ErrCancelled, "execution cancelled").WithCause(err).WithWorkflow(name)
}
