package retry

import (
	"math"
	"math/rand"
	"time"
)

// BackoffStrategy 退避策略接口
// 计算第 attempt 次失败后、下一次尝试前的等待时间（attempt 从 1 开始）
type BackoffStrategy interface {
	Delay(attempt int) time.Duration
}

// ConstantBackoff 固定间隔退避
type ConstantBackoff struct {
	Interval time.Duration
}

// NewConstantBackoff 创建固定间隔退避策略
func NewConstantBackoff(interval time.Duration) *ConstantBackoff {
	if interval <= 0 {
		interval = 1 * time.Second
	}
	return &ConstantBackoff{Interval: interval}
}

func (b *ConstantBackoff) Delay(attempt int) time.Duration {
	return b.Interval
}

// ExponentialBackoff 指数退避策略
// 延迟随尝试次数指数增长，可选随机抖动（防止雪崩）
type ExponentialBackoff struct {
	InitialDelay time.Duration // 初始延迟时间
	MaxDelay     time.Duration // 最大延迟时间
	Multiplier   float64       // 延迟时间倍增因子
	Jitter       bool          // 是否添加随机抖动
}

// NewExponentialBackoff 创建指数退避策略
func NewExponentialBackoff(initial, max time.Duration, multiplier float64) *ExponentialBackoff {
	return normalize(&ExponentialBackoff{
		InitialDelay: initial,
		MaxDelay:     max,
		Multiplier:   multiplier,
	})
}

// NewJitterBackoff 创建带随机抖动的指数退避策略
func NewJitterBackoff(initial, max time.Duration, multiplier float64) *ExponentialBackoff {
	b := NewExponentialBackoff(initial, max, multiplier)
	b.Jitter = true
	return b
}

// normalize 参数校验，非法值回退到默认值
func normalize(b *ExponentialBackoff) *ExponentialBackoff {
	if b.InitialDelay <= 0 {
		b.InitialDelay = 1 * time.Second
	}
	if b.MaxDelay <= 0 {
		b.MaxDelay = 30 * time.Second
	}
	if b.Multiplier < 1.0 {
		b.Multiplier = 2.0
	}
	return b
}

// Delay 计算延迟时间
// 指数退避：delay = initial * multiplier^(attempt-1)，限制在 [initial, max] 区间
func (b *ExponentialBackoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := float64(b.InitialDelay) * math.Pow(b.Multiplier, float64(attempt-1))

	if delay > float64(b.MaxDelay) {
		delay = float64(b.MaxDelay)
	}

	// 随机抖动（±25%）：防止多个调用方同时重试导致的雪崩效应
	if b.Jitter {
		jitter := delay * 0.25
		delay = delay + (rand.Float64()*2-1)*jitter
	}

	if delay < float64(b.InitialDelay) {
		delay = float64(b.InitialDelay)
	}

	return time.Duration(delay)
}

// DefaultBackoff 返回默认退避策略
// 适用于大部分任务重试场景
func DefaultBackoff() BackoffStrategy {
	return NewJitterBackoff(1*time.Second, 30*time.Second, 2.0)
}
