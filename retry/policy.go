// Package retry 提供任务执行的重试与超时策略。
//
// Policy 决定是否值得再次尝试；BackoffStrategy 决定两次尝试之间等待多久；
// TimeoutPolicy 限定单次尝试的最长执行时间。三者由 workflow.TaskExecutor
// 组合使用：超时约束单次尝试，重试策略管辖整个尝试序列。
package retry

import (
	"errors"
	"time"

	"github.com/BaSui01/flowkit/types"
)

// Policy 重试策略配置
// 遵循 KISS 原则：简单但功能完整的重试策略
type Policy struct {
	MaxAttempts          int             // 最大尝试次数（含首次执行，最小为 1）
	Backoff              BackoffStrategy // 退避策略（nil 时使用默认指数退避）
	RetryableErrors      []error         // 可重试的错误类型（为空则重试所有错误）
	NonRetryableTimeouts bool            // 为 true 时超时错误不触发重试

	// OnRetry 每次重试前的回调
	OnRetry func(attempt int, err error, delay time.Duration)
}

// None 哨兵策略：只执行一次，失败不重试。
var None = &Policy{MaxAttempts: 1}

// NewPolicy 创建重试策略
func NewPolicy(maxAttempts int, backoff BackoffStrategy) *Policy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if backoff == nil {
		backoff = DefaultBackoff()
	}
	return &Policy{
		MaxAttempts: maxAttempts,
		Backoff:     backoff,
	}
}

// DefaultPolicy 返回默认重试策略：最多 3 次尝试，带抖动的指数退避
func DefaultPolicy() *Policy {
	return NewPolicy(3, DefaultBackoff())
}

// ShouldRetry 判断第 attempt 次尝试失败后是否应该再试一次（attempt 从 1 开始）
func (p *Policy) ShouldRetry(attempt int, err error) bool {
	if err == nil {
		return false
	}
	if attempt >= p.MaxAttempts {
		return false
	}
	if p.NonRetryableTimeouts && types.IsTimeout(err) {
		return false
	}
	return p.isRetryable(err)
}

// Delay 计算下一次尝试前的等待时间
func (p *Policy) Delay(attempt int) time.Duration {
	if p.Backoff == nil {
		return 0
	}
	return p.Backoff.Delay(attempt)
}

// isRetryable 检查错误是否可重试
func (p *Policy) isRetryable(err error) bool {
	// 如果没有配置可重试错误列表，则所有错误都可重试
	if len(p.RetryableErrors) == 0 {
		return true
	}
	for _, retryable := range p.RetryableErrors {
		if errors.Is(err, retryable) {
			return true
		}
	}
	return false
}

// TimeoutPolicy 限定单次尝试的最长执行时间
// PerAttempt 为 0 时不限制
type TimeoutPolicy struct {
	PerAttempt time.Duration
}

// NewTimeoutPolicy 创建超时策略
func NewTimeoutPolicy(perAttempt time.Duration) *TimeoutPolicy {
	return &TimeoutPolicy{PerAttempt: perAttempt}
}

// Enabled 是否启用了超时限制
func (p *TimeoutPolicy) Enabled() bool {
	return p != nil && p.PerAttempt > 0
}
