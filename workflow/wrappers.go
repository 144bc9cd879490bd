package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/BaSui01/flowkit/ratelimit"
	"github.com/BaSui01/flowkit/types"
)

// RateLimited 限流包装工作流
// 执行子工作流前先向限流器申请准入；阻塞等待被打断（context 取消）时
// 以 RATE_LIMIT_INTERRUPTED 失败结果呈现
type RateLimited struct {
	base
	limiter ratelimit.Limiter
	child   Workflow
}

// NewRateLimited 创建限流包装
func NewRateLimited(name string, limiter ratelimit.Limiter, child Workflow, opts ...Option) (*RateLimited, error) {
	if limiter == nil {
		return nil, types.Errorf(types.ErrInvalidConfig, "workflow %s: limiter is required", name)
	}
	if child == nil {
		return nil, types.Errorf(types.ErrMissingChild, "workflow %s: child is required", name)
	}
	return &RateLimited{
		base:    newBase(name, TypeRateLimited, opts...),
		limiter: limiter,
		child:   child,
	}, nil
}

// Execute 申请准入后执行子工作流
func (w *RateLimited) Execute(ctx context.Context, wc *Context) *Result {
	return Run(wc, w.name, func(start time.Time) *Result {
		if err := w.limiter.Acquire(ctx); err != nil {
			return Failure(start, err)
		}
		return w.child.Execute(ctx, wc)
	})
}

// Children 返回被包装的子工作流
func (w *RateLimited) Children() []Workflow {
	return []Workflow{w.child}
}

// Timeout 超时包装工作流
// 限定子工作流整体执行时间；超时以 TIMEOUT 失败结果呈现。
// 已启动的子工作流不保证被打断，除非它观察到 context 取消
type Timeout struct {
	base
	limit time.Duration
	child Workflow
}

// NewTimeout 创建超时包装
func NewTimeout(name string, limit time.Duration, child Workflow, opts ...Option) (*Timeout, error) {
	if limit <= 0 {
		return nil, types.Errorf(types.ErrInvalidConfig, "workflow %s: limit must be positive, got %v", name, limit)
	}
	if child == nil {
		return nil, types.Errorf(types.ErrMissingChild, "workflow %s: child is required", name)
	}
	return &Timeout{
		base:  newBase(name, TypeTimeout, opts...),
		limit: limit,
		child: child,
	}, nil
}

// Execute 在时间限制内执行子工作流
func (w *Timeout) Execute(ctx context.Context, wc *Context) *Result {
	return Run(wc, w.name, func(start time.Time) *Result {
		runCtx, cancel := context.WithTimeout(ctx, w.limit)
		defer cancel()

		done := make(chan *Result, 1)
		go func() {
			done <- w.child.Execute(runCtx, wc)
		}()

		select {
		case res := <-done:
			// 子工作流自己观察到截止超时的失败同样归类为超时
			if res != nil && res.Failed() && runCtx.Err() == context.DeadlineExceeded && errors.Is(res.Err, context.DeadlineExceeded) {
				return Failure(start, w.timeoutError(runCtx.Err()))
			}
			return res
		case <-runCtx.Done():
			if runCtx.Err() == context.DeadlineExceeded {
				return Failure(start, w.timeoutError(runCtx.Err()))
			}
			return Failure(start, cancelled(w.name, runCtx.Err()))
		}
	})
}

func (w *Timeout) timeoutError(cause error) *types.Error {
	return types.Errorf(types.ErrTimeout, "workflow %s exceeded %v timeout", w.child.Name(), w.limit).
		WithCause(cause).WithWorkflow(w.name)
}

// Children 返回被包装的子工作流
func (w *Timeout) Children() []Workflow {
	return []Workflow{w.child}
}
