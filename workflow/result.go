package workflow

import "time"

// Status 执行结果状态
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// Result 不可变的执行结果
// 每次 Execute 调用构造一次，之后不再修改
type Result struct {
	Status      Status
	Err         error
	StartedAt   time.Time
	CompletedAt time.Time
}

// Success 构造成功结果
func Success(start time.Time) *Result {
	return &Result{
		Status:      StatusSuccess,
		StartedAt:   start,
		CompletedAt: time.Now(),
	}
}

// Failure 构造失败结果
func Failure(start time.Time, err error) *Result {
	return &Result{
		Status:      StatusFailed,
		Err:         err,
		StartedAt:   start,
		CompletedAt: time.Now(),
	}
}

// Succeeded 是否执行成功。nil 结果视为未成功
func (r *Result) Succeeded() bool {
	return r != nil && r.Status == StatusSuccess
}

// Failed 是否执行失败。nil 结果视为失败
func (r *Result) Failed() bool {
	return !r.Succeeded()
}

// Duration 返回执行耗时
func (r *Result) Duration() time.Duration {
	if r == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}
