package workflow

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/BaSui01/flowkit/types"
)

// chaosRand wraps math/rand for concurrent rolls. A Chaos wrapper can be
// executed from parallel branches, and rand.Rand is not safe for concurrent
// use.
type chaosRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (c *chaosRand) Float64() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.r.Float64()
}

func (c *chaosRand) Int63n(n int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.r.Int63n(n)
}

// ChaosStrategy 故障注入策略
// 每次执行时独立掷骰；返回非 nil 错误时子工作流不再执行
type ChaosStrategy interface {
	evaluate(ctx context.Context, rng *chaosRand) error
}

// FailureInjection 以给定概率返回合成失败
type FailureInjection struct {
	Probability float64
}

func (s FailureInjection) evaluate(_ context.Context, rng *chaosRand) error {
	if rng.Float64() < s.Probability {
		return types.NewError(types.ErrChaosFault, "injected failure")
	}
	return nil
}

// ErrorInjection 以给定概率注入调用方提供的错误
type ErrorInjection struct {
	Probability float64
	Err         error
}

func (s ErrorInjection) evaluate(_ context.Context, rng *chaosRand) error {
	if rng.Float64() < s.Probability {
		return s.Err
	}
	return nil
}

// LatencyInjection 以给定概率注入 [Min, Max] 区间内均匀采样的延迟
type LatencyInjection struct {
	Probability float64
	Min         time.Duration
	Max         time.Duration
}

func (s LatencyInjection) evaluate(ctx context.Context, rng *chaosRand) error {
	if rng.Float64() >= s.Probability {
		return nil
	}

	delay := s.Min
	if span := int64(s.Max - s.Min); span > 0 {
		delay += time.Duration(rng.Int63n(span + 1))
	}

	timer := time.NewTimer(delay)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Chaos 故障注入包装工作流
// 在子工作流执行前依次独立评估每个注入策略，用于在受控故障率下验证
// 重试/回退/超时的组合韧性；除配置外没有内部状态
type Chaos struct {
	base
	child      Workflow
	strategies []ChaosStrategy
	rng        *chaosRand
}

// NewChaos 创建故障注入包装
// seed 为 0 时使用当前时间作为随机种子；固定 seed 用于可复现测试
func NewChaos(name string, child Workflow, seed int64, strategies []ChaosStrategy, opts ...Option) (*Chaos, error) {
	if child == nil {
		return nil, types.Errorf(types.ErrMissingChild, "workflow %s: child is required", name)
	}
	for i, s := range strategies {
		if s == nil {
			return nil, types.Errorf(types.ErrInvalidConfig, "workflow %s: strategy %d is nil", name, i)
		}
		if err := validateProbability(name, s); err != nil {
			return nil, err
		}
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Chaos{
		base:       newBase(name, TypeChaos, opts...),
		child:      child,
		strategies: strategies,
		rng:        &chaosRand{r: rand.New(rand.NewSource(seed))},
	}, nil
}

func validateProbability(name string, s ChaosStrategy) error {
	var p float64
	switch v := s.(type) {
	case FailureInjection:
		p = v.Probability
	case ErrorInjection:
		p = v.Probability
		if v.Err == nil {
			return types.Errorf(types.ErrInvalidConfig, "workflow %s: error injection requires a non-nil error", name)
		}
	case LatencyInjection:
		p = v.Probability
		if v.Min < 0 || v.Max < v.Min {
			return types.Errorf(types.ErrInvalidConfig, "workflow %s: invalid latency range [%v, %v]", name, v.Min, v.Max)
		}
	default:
		return nil
	}
	if p < 0 || p > 1 {
		return types.Errorf(types.ErrInvalidConfig, "workflow %s: probability %g out of [0, 1]", name, p)
	}
	return nil
}

// Execute 评估注入策略后执行子工作流
func (w *Chaos) Execute(ctx context.Context, wc *Context) *Result {
	return Run(wc, w.name, func(start time.Time) *Result {
		for _, s := range w.strategies {
			if err := s.evaluate(ctx, w.rng); err != nil {
				return Failure(start, err)
			}
		}
		return w.child.Execute(ctx, wc)
	})
}

// Children 返回被包装的子工作流
func (w *Chaos) Children() []Workflow {
	return []Workflow{w.child}
}
