package listener

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/BaSui01/flowkit/workflow"
)

// Tracing opens an OpenTelemetry span per workflow execution. Spans nest
// along the synchronous composition: each new span is parented on the most
// recent open span of the same run. Branches of a shared-context parallel
// workflow are recorded safely but their parenting follows start order, not
// tree structure.
type Tracing struct {
	tracer trace.Tracer

	mu    sync.Mutex
	stack map[string][]traceEntry // run ID -> open spans
}

type traceEntry struct {
	name string
	ctx  context.Context
	span trace.Span
}

// NewTracing creates a tracing listener emitting spans through tracer.
func NewTracing(tracer trace.Tracer) *Tracing {
	return &Tracing{
		tracer: tracer,
		stack:  make(map[string][]traceEntry),
	}
}

// OnStart opens a span for the execution.
func (t *Tracing) OnStart(name string, wc *workflow.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	runID := wc.RunID()
	parent := context.Background()
	if open := t.stack[runID]; len(open) > 0 {
		parent = open[len(open)-1].ctx
	}

	ctx, span := t.tracer.Start(parent, name,
		trace.WithAttributes(attribute.String("workflow.run_id", runID)),
	)
	t.stack[runID] = append(t.stack[runID], traceEntry{name: name, ctx: ctx, span: span})
}

// OnSuccess ends the execution's span.
func (t *Tracing) OnSuccess(name string, wc *workflow.Context, result *workflow.Result) {
	if span, ok := t.pop(wc.RunID(), name); ok {
		span.SetStatus(codes.Ok, "")
		span.End()
	}
}

// OnFailure records the error and ends the execution's span.
func (t *Tracing) OnFailure(name string, wc *workflow.Context, result *workflow.Result) {
	if span, ok := t.pop(wc.RunID(), name); ok {
		if result.Err != nil {
			span.RecordError(result.Err)
			span.SetStatus(codes.Error, result.Err.Error())
		} else {
			span.SetStatus(codes.Error, "failed")
		}
		span.End()
	}
}

// pop removes and returns the most recent open span with the given name.
func (t *Tracing) pop(runID, name string) (trace.Span, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	open := t.stack[runID]
	for i := len(open) - 1; i >= 0; i-- {
		if open[i].name == name {
			span := open[i].span
			t.stack[runID] = append(open[:i], open[i+1:]...)
			if len(t.stack[runID]) == 0 {
				delete(t.stack, runID)
			}
			return span, true
		}
	}
	return nil, false
}
