package workflow

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/flowkit/exec"
	"github.com/BaSui01/flowkit/types"
)

// ParallelConfig 并行工作流配置
type ParallelConfig struct {
	// FailFast 为 true 时，任一分支失败立即结束等待并返回该分支的错误；
	// 已启动的分支不保证被打断（除非它们观察到 context 取消）
	FailFast bool

	// ShareContext 为 true 时所有分支并发读写同一个 Context 实例，
	// 由调用方保证键不冲突；为 false 时每个分支拿到顶层键的快照副本，
	// 分支写入不会自动合并回父 Context
	ShareContext bool

	// Strategy 并发提交策略，nil 时使用 exec.GoroutineStrategy
	Strategy exec.ExecutionStrategy
}

// Parallel 并行工作流
// 每个子工作流通过 ExecutionStrategy 提交执行，随后按配置的语义汇合
type Parallel struct {
	base
	cfg      ParallelConfig
	children []Workflow
}

// NewParallel 创建并行工作流
// 空子列表是合法的：执行时直接返回成功
func NewParallel(name string, cfg ParallelConfig, children []Workflow, opts ...Option) (*Parallel, error) {
	if err := validateChildren(name, children); err != nil {
		return nil, err
	}
	if cfg.Strategy == nil {
		cfg.Strategy = exec.NewGoroutineStrategy(nil)
	}
	return &Parallel{
		base:     newBase(name, TypeParallel, opts...),
		cfg:      cfg,
		children: children,
	}, nil
}

// branchOutcome 单个分支的执行结果
type branchOutcome struct {
	index int
	name  string
	res   *Result
}

// Execute 并行执行所有子工作流并汇合结果
func (w *Parallel) Execute(ctx context.Context, wc *Context) *Result {
	return Run(wc, w.name, func(start time.Time) *Result {
		if len(w.children) == 0 {
			return Success(start)
		}

		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		// 缓冲区容纳所有分支，失败提前返回时分支 goroutine 不会泄漏
		outcomes := make(chan branchOutcome, len(w.children))
		futures := make([]*exec.Future, 0, len(w.children))

		for i, child := range w.children {
			branchCtx := wc
			if !w.cfg.ShareContext {
				branchCtx = wc.Copy()
			}

			i, child := i, child
			future, err := w.cfg.Strategy.Submit(runCtx, child.Name(), func(c context.Context) error {
				res := child.Execute(c, branchCtx)
				outcomes <- branchOutcome{index: i, name: child.Name(), res: res}
				if res.Failed() {
					return res.Err
				}
				return nil
			})
			if err != nil {
				// 提交机制本身的错误直接作为工作流失败原因传播
				cancel()
				return Failure(start, types.NewError(types.ErrSubmitFailed, "branch submission failed").
					WithCause(err).WithWorkflow(w.name))
			}
			futures = append(futures, future)
		}

		if w.cfg.FailFast {
			return w.joinFailFast(ctx, cancel, start, outcomes, len(futures))
		}
		return w.joinAll(ctx, start, outcomes, futures)
	})
}

// joinFailFast 任一分支失败立即结束等待
func (w *Parallel) joinFailFast(ctx context.Context, cancel context.CancelFunc, start time.Time, outcomes <-chan branchOutcome, total int) *Result {
	for received := 0; received < total; received++ {
		select {
		case o := <-outcomes:
			if o.res.Failed() {
				cancel()
				err := branchError(o)
				w.logger.Debug("parallel branch failed, aborting join",
					zap.String("workflow", w.name),
					zap.String("branch", o.name),
					zap.Error(err),
				)
				return Failure(start, err)
			}
		case <-ctx.Done():
			return Failure(start, cancelled(w.name, ctx.Err()))
		}
	}
	return Success(start)
}

// joinAll 等待所有分支结束，再报告整体结果
func (w *Parallel) joinAll(ctx context.Context, start time.Time, outcomes <-chan branchOutcome, futures []*exec.Future) *Result {
	for _, future := range futures {
		if err := future.Wait(ctx); err != nil && ctx.Err() != nil {
			return Failure(start, cancelled(w.name, ctx.Err()))
		}
	}

	// 所有分支已结束；按声明顺序报告首个失败
	results := make([]*Result, len(futures))
	for range futures {
		o := <-outcomes
		results[o.index] = o.res
	}
	for i, res := range results {
		if res.Failed() {
			return Failure(start, branchError(branchOutcome{index: i, name: w.children[i].Name(), res: res}))
		}
	}
	return Success(start)
}

// branchError 包装分支失败原因
func branchError(o branchOutcome) *types.Error {
	err := types.Errorf(types.ErrBranchFailed, "branch %s failed", o.name)
	if o.res != nil {
		err = err.WithCause(o.res.Err)
	}
	return err
}

// Children 返回直接子工作流
func (w *Parallel) Children() []Workflow {
	return w.children
}
