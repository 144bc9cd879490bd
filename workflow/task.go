package workflow

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/flowkit/retry"
	"github.com/BaSui01/flowkit/types"
)

// Task 工作单元接口
// 具体 I/O 任务（HTTP、文件、脚本等）由外部实现
type Task interface {
	Execute(ctx context.Context, wc *Context) error
}

// NamedTask 带名称的工作单元
type NamedTask interface {
	Task
	Name() string
}

// TaskFunc 函数任务类型
type TaskFunc func(ctx context.Context, wc *Context) error

func (f TaskFunc) Execute(ctx context.Context, wc *Context) error {
	return f(ctx, wc)
}

// TaskDescriptor 把工作单元和它的重试/超时策略绑定在一起
// 构建后不可变
type TaskDescriptor struct {
	task    Task
	name    string
	retry   *retry.Policy
	timeout *retry.TimeoutPolicy
}

// TaskOption 配置 TaskDescriptor
type TaskOption func(*TaskDescriptor)

// WithTaskName 设置任务显示名称
func WithTaskName(name string) TaskOption {
	return func(d *TaskDescriptor) { d.name = name }
}

// WithRetryPolicy 设置重试策略（默认 retry.None：只执行一次）
func WithRetryPolicy(p *retry.Policy) TaskOption {
	return func(d *TaskDescriptor) { d.retry = p }
}

// WithTimeoutPolicy 设置单次尝试的超时策略
func WithTimeoutPolicy(p *retry.TimeoutPolicy) TaskOption {
	return func(d *TaskDescriptor) { d.timeout = p }
}

// NewTaskDescriptor 创建任务描述符
func NewTaskDescriptor(task Task, opts ...TaskOption) (*TaskDescriptor, error) {
	if task == nil {
		return nil, types.NewError(types.ErrInvalidConfig, "task is required")
	}
	d := &TaskDescriptor{
		task:  task,
		retry: retry.None,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.name == "" {
		if named, ok := task.(NamedTask); ok {
			d.name = named.Name()
		} else {
			d.name = "task"
		}
	}
	if d.retry == nil {
		d.retry = retry.None
	}
	return d, nil
}

// Name 返回任务显示名称
func (d *TaskDescriptor) Name() string { return d.name }

// TaskExecutor 任务执行器
// 组合语义：超时约束单次尝试，重试策略管辖整个尝试序列。
// 每次尝试失败（业务错误或超时）后询问重试策略；允许时按退避策略
// 等待后重试，否则把最后一次的错误作为任务失败原因返回
type TaskExecutor struct {
	logger *zap.Logger
}

// NewTaskExecutor 创建任务执行器
func NewTaskExecutor(logger *zap.Logger) *TaskExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskExecutor{logger: logger}
}

// Run 按描述符的策略执行任务
func (e *TaskExecutor) Run(ctx context.Context, wc *Context, d *TaskDescriptor) error {
	var lastErr error

	for attempt := 1; ; attempt++ {
		lastErr = e.runAttempt(ctx, wc, d)
		if lastErr == nil {
			if attempt > 1 {
				e.logger.Info("task succeeded after retry",
					zap.String("task", d.name),
					zap.Int("attempt", attempt),
				)
			}
			return nil
		}

		if !d.retry.ShouldRetry(attempt, lastErr) {
			break
		}

		delay := d.retry.Delay(attempt)
		e.logger.Debug("retrying task",
			zap.String("task", d.name),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(lastErr),
		)
		if d.retry.OnRetry != nil {
			d.retry.OnRetry(attempt, lastErr, delay)
		}

		// 等待退避延迟，同时监听 context 取消
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return cancelled(d.name, ctx.Err())
		case <-timer.C:
		}
	}

	return lastErr
}

// runAttempt 执行单次尝试，受超时策略约束
func (e *TaskExecutor) runAttempt(ctx context.Context, wc *Context, d *TaskDescriptor) error {
	if !d.timeout.Enabled() {
		return runTaskGuarded(ctx, wc, d.task)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, d.timeout.PerAttempt)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- runTaskGuarded(attemptCtx, wc, d.task)
	}()

	select {
	case err := <-done:
		// 任务自己上报的截止超时同样归类为超时失败
		if err != nil && errors.Is(err, context.DeadlineExceeded) && attemptCtx.Err() == context.DeadlineExceeded {
			return attemptTimeout(d, err)
		}
		return err
	case <-attemptCtx.Done():
		if attemptCtx.Err() == context.DeadlineExceeded {
			return attemptTimeout(d, attemptCtx.Err())
		}
		return cancelled(d.name, attemptCtx.Err())
	}
}

// attemptTimeout 把单次尝试超时翻译为统一的超时错误
// 超时是区别于业务错误的独立失败类别，但仍受重试策略裁决
func attemptTimeout(d *TaskDescriptor, cause error) *types.Error {
	return types.Errorf(types.ErrTimeout, "task %s exceeded %v attempt timeout", d.name, d.timeout.PerAttempt).
		WithCause(cause)
}

// runTaskGuarded 执行任务并把 panic 翻译为错误
func runTaskGuarded(ctx context.Context, wc *Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = types.Errorf(types.ErrTaskPanic, "task panicked: %v", r)
		}
	}()
	return task.Execute(ctx, wc)
}

// TaskWorkflow 把任务描述符适配为工作流叶子节点
type TaskWorkflow struct {
	base
	descriptor *TaskDescriptor
	executor   *TaskExecutor
}

// NewTaskWorkflow 创建任务工作流
func NewTaskWorkflow(name string, descriptor *TaskDescriptor, opts ...Option) (*TaskWorkflow, error) {
	if descriptor == nil {
		return nil, types.Errorf(types.ErrInvalidConfig, "workflow %s: descriptor is required", name)
	}
	if name == "" {
		name = descriptor.Name()
	}
	b := newBase(name, TypeTask, opts...)
	return &TaskWorkflow{
		base:       b,
		descriptor: descriptor,
		executor:   NewTaskExecutor(b.logger),
	}, nil
}

// NewTask 便捷构造：一步创建函数任务工作流
func NewTask(name string, fn TaskFunc, opts ...TaskOption) (*TaskWorkflow, error) {
	if fn == nil {
		return nil, types.Errorf(types.ErrInvalidConfig, "workflow %s: task function is required", name)
	}
	descriptor, err := NewTaskDescriptor(fn, append([]TaskOption{WithTaskName(name)}, opts...)...)
	if err != nil {
		return nil, err
	}
	return NewTaskWorkflow(name, descriptor)
}

// Execute 执行任务
func (w *TaskWorkflow) Execute(ctx context.Context, wc *Context) *Result {
	return Run(wc, w.name, func(start time.Time) *Result {
		if err := w.executor.Run(ctx, wc, w.descriptor); err != nil {
			return Failure(start, err)
		}
		return Success(start)
	})
}
