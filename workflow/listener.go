package workflow

// Listener receives lifecycle callbacks around every workflow execution
// driven through a Context. Callbacks are invoked synchronously on the
// executing goroutine; a slow listener slows the run.
type Listener interface {
	// OnStart is invoked before a workflow begins executing.
	OnStart(name string, wc *Context)
	// OnSuccess is invoked after a workflow completes successfully.
	OnSuccess(name string, wc *Context, result *Result)
	// OnFailure is invoked after a workflow fails; result.Err carries the
	// causing error.
	OnFailure(name string, wc *Context, result *Result)
}

// FuncListener adapts plain functions to the Listener interface. Nil fields
// are skipped.
type FuncListener struct {
	Start   func(name string, wc *Context)
	Success func(name string, wc *Context, result *Result)
	Failure func(name string, wc *Context, result *Result)
}

func (l *FuncListener) OnStart(name string, wc *Context) {
	if l.Start != nil {
		l.Start(name, wc)
	}
}

func (l *FuncListener) OnSuccess(name string, wc *Context, result *Result) {
	if l.Success != nil {
		l.Success(name, wc, result)
	}
}

func (l *FuncListener) OnFailure(name string, wc *Context, result *Result) {
	if l.Failure != nil {
		l.Failure(name, wc, result)
	}
}
