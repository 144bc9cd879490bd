package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/BaSui01/flowkit/types"
)

// recorder 按执行顺序记录子工作流名称，供断言使用
type recorder struct {
	mu    sync.Mutex
	names []string
}

func (r *recorder) add(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, name)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// stubWorkflow 测试替身：行为完全由 fn 决定
type stubWorkflow struct {
	name string
	fn   func(ctx context.Context, wc *Context) *Result
}

func (s *stubWorkflow) Execute(ctx context.Context, wc *Context) *Result {
	return s.fn(ctx, wc)
}

func (s *stubWorkflow) Name() string { return s.name }

func (s *stubWorkflow) Type() Type { return TypeTask }

func okFlow(name string, rec *recorder) Workflow {
	return &stubWorkflow{name: name, fn: func(ctx context.Context, wc *Context) *Result {
		if rec != nil {
			rec.add(name)
		}
		return Success(time.Now())
	}}
}

func failFlow(name string, rec *recorder, err error) Workflow {
	return &stubWorkflow{name: name, fn: func(ctx context.Context, wc *Context) *Result {
		if rec != nil {
			rec.add(name)
		}
		return Failure(time.Now(), err)
	}}
}

func assertOrder(t *testing.T, rec *recorder, want ...string) {
	t.Helper()
	got := rec.snapshot()
	if len(got) != len(want) {
		t.Fatalf("expected executions %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected executions %v, got %v", want, got)
		}
	}
}

func TestRun_PanicBecomesFailure(t *testing.T) {
	wc := NewContext()

	res := Run(wc, "explosive", func(start time.Time) *Result {
		panic("boom")
	})

	if res.Succeeded() {
		t.Fatal("expected failure result")
	}
	if types.GetErrorCode(res.Err) != types.ErrTaskPanic {
		t.Errorf("expected TASK_PANIC, got %s", types.GetErrorCode(res.Err))
	}
}

func TestRun_NilResultBecomesFailure(t *testing.T) {
	wc := NewContext()

	res := Run(wc, "void", func(start time.Time) *Result {
		return nil
	})

	if res == nil || res.Succeeded() {
		t.Fatal("expected non-nil failure result")
	}
	if types.GetErrorCode(res.Err) != types.ErrNilResult {
		t.Errorf("expected NIL_RESULT, got %s", types.GetErrorCode(res.Err))
	}
}

func TestRun_FiresListeners(t *testing.T) {
	wc := NewContext()

	var events []string
	wc.AddListener(&FuncListener{
		Start: func(name string, _ *Context) {
			events = append(events, "start:"+name)
		},
		Success: func(name string, _ *Context, _ *Result) {
			events = append(events, "success:"+name)
		},
		Failure: func(name string, _ *Context, res *Result) {
			events = append(events, "failure:"+name)
		},
	})

	Run(wc, "good", func(start time.Time) *Result { return Success(start) })
	Run(wc, "bad", func(start time.Time) *Result { return Failure(start, errors.New("boom")) })

	want := []string{"start:good", "success:good", "start:bad", "failure:bad"}
	if len(events) != len(want) {
		t.Fatalf("expected events %v, got %v", want, events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("expected events %v, got %v", want, events)
		}
	}
}

func TestNewBase_DefaultsNameToType(t *testing.T) {
	seq, err := NewSequential("", nil)
	if err != nil {
		t.Fatalf("NewSequential: %v", err)
	}
	if seq.Name() != string(TypeSequential) {
		t.Errorf("expected type-derived name, got %q", seq.Name())
	}
	if seq.Type() != TypeSequential {
		t.Errorf("expected sequential type, got %s", seq.Type())
	}
}

func TestResult_NilSafety(t *testing.T) {
	var res *Result
	if res.Succeeded() {
		t.Error("nil result must not report success")
	}
	if !res.Failed() {
		t.Error("nil result must report failure")
	}
	if res.Duration() != 0 {
		t.Error("nil result duration must be zero")
	}
}
