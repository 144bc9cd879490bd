package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/BaSui01/flowkit/exec"
	"github.com/BaSui01/flowkit/types"
)

func TestParallel_AllBranchesRun(t *testing.T) {
	rec := &recorder{}
	par, err := NewParallel("fanout", ParallelConfig{}, []Workflow{
		okFlow("a", rec),
		okFlow("b", rec),
		okFlow("c", rec),
	})
	if err != nil {
		t.Fatalf("NewParallel: %v", err)
	}

	res := par.Execute(context.Background(), NewContext())
	if !res.Succeeded() {
		t.Fatalf("expected success, got %v", res.Err)
	}
	if got := rec.snapshot(); len(got) != 3 {
		t.Errorf("expected 3 branch executions, got %v", got)
	}
}

func TestParallel_EmptyIsNoop(t *testing.T) {
	par, _ := NewParallel("fanout", ParallelConfig{}, nil)
	if res := par.Execute(context.Background(), NewContext()); !res.Succeeded() {
		t.Errorf("empty parallel must succeed, got %v", res.Err)
	}
}

func TestParallel_JoinAllReportsFirstFailureByOrder(t *testing.T) {
	errB := errors.New("b failed")
	errC := errors.New("c failed")
	par, _ := NewParallel("fanout", ParallelConfig{}, []Workflow{
		okFlow("a", nil),
		// b 声明在前但完成在后
		&stubWorkflow{name: "b", fn: func(ctx context.Context, wc *Context) *Result {
			time.Sleep(50 * time.Millisecond)
			return Failure(time.Now(), errB)
		}},
		failFlow("c", nil, errC),
	})

	res := par.Execute(context.Background(), NewContext())
	if res.Succeeded() {
		t.Fatal("expected failure")
	}
	if types.GetErrorCode(res.Err) != types.ErrBranchFailed {
		t.Errorf("expected BRANCH_FAILED, got %s", types.GetErrorCode(res.Err))
	}
	// 按声明顺序报告首个失败，而不是按完成顺序
	if !errors.Is(res.Err, errB) {
		t.Errorf("expected b's error by declaration order, got %v", res.Err)
	}
}

func TestParallel_FailFastReturnsEarly(t *testing.T) {
	boom := errors.New("boom")
	slowObservedCancel := make(chan struct{})

	par, _ := NewParallel("fanout", ParallelConfig{FailFast: true}, []Workflow{
		&stubWorkflow{name: "slow", fn: func(ctx context.Context, wc *Context) *Result {
			// 失败分支触发 fail-fast 后，慢分支通过 context 取消被打断
			<-ctx.Done()
			close(slowObservedCancel)
			return Failure(time.Now(), ctx.Err())
		}},
		failFlow("fast", nil, boom),
	})

	res := par.Execute(context.Background(), NewContext())
	if res.Succeeded() {
		t.Fatal("expected failure")
	}
	if !errors.Is(res.Err, boom) {
		t.Errorf("expected fast branch error, got %v", res.Err)
	}

	select {
	case <-slowObservedCancel:
	case <-time.After(2 * time.Second):
		t.Fatal("slow branch never observed cancellation")
	}
}

func TestParallel_IsolatedContextByDefault(t *testing.T) {
	par, _ := NewParallel("fanout", ParallelConfig{}, []Workflow{
		&stubWorkflow{name: "writer", fn: func(ctx context.Context, wc *Context) *Result {
			wc.Put("branch-key", 1)
			return Success(time.Now())
		}},
	})

	wc := NewContext()
	wc.Put("seed", true)
	par.Execute(context.Background(), wc)

	// 分支写入隔离副本，不会自动合并回父 Context
	if wc.Has("branch-key") {
		t.Error("branch write must not leak into the parent context")
	}
}

func TestParallel_SharedContext(t *testing.T) {
	par, _ := NewParallel("fanout", ParallelConfig{ShareContext: true}, []Workflow{
		&stubWorkflow{name: "writer1", fn: func(ctx context.Context, wc *Context) *Result {
			wc.Put("k1", 1)
			return Success(time.Now())
		}},
		&stubWorkflow{name: "writer2", fn: func(ctx context.Context, wc *Context) *Result {
			wc.Put("k2", 2)
			return Success(time.Now())
		}},
	})

	wc := NewContext()
	par.Execute(context.Background(), wc)

	if !wc.Has("k1") || !wc.Has("k2") {
		t.Errorf("shared context must see branch writes, keys %v", wc.Keys())
	}
}

func TestParallel_PoolStrategySaturationFailsWorkflow(t *testing.T) {
	// 1 个工作槽容纳不下 2 个分支，提交机制错误直接传播
	pool := exec.NewPoolStrategy(1, nil)
	block := make(chan struct{})

	par, _ := NewParallel("fanout", ParallelConfig{Strategy: pool}, []Workflow{
		&stubWorkflow{name: "holder", fn: func(ctx context.Context, wc *Context) *Result {
			<-block
			return Success(time.Now())
		}},
		okFlow("rejected", nil),
	})

	done := make(chan *Result, 1)
	go func() {
		done <- par.Execute(context.Background(), NewContext())
	}()

	res := <-done
	close(block)

	if res.Succeeded() {
		t.Fatal("expected submission failure")
	}
	if types.GetErrorCode(res.Err) != types.ErrSubmitFailed {
		t.Errorf("expected SUBMIT_FAILED, got %s", types.GetErrorCode(res.Err))
	}
	if !errors.Is(res.Err, exec.ErrPoolSaturated) {
		t.Errorf("expected pool saturation as cause, got %v", res.Err)
	}
}

func TestParallel_CancelledContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	par, _ := NewParallel("fanout", ParallelConfig{}, []Workflow{
		&stubWorkflow{name: "hang", fn: func(ctx context.Context, wc *Context) *Result {
			select {
			case <-release:
			case <-ctx.Done():
			}
			return Success(time.Now())
		}},
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	res := par.Execute(ctx, NewContext())
	if res.Succeeded() {
		t.Fatal("expected cancellation failure")
	}
	if types.GetErrorCode(res.Err) != types.ErrCancelled {
		t.Errorf("expected CANCELLED, got %s", types.GetErrorCode(res.Err))
	}
}
