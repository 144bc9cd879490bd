// Package saga implements forward execution with backward compensation over
// the workflow composite model.
//
// Steps execute in declared order until the first failure; the
// already-succeeded prefix is then compensated in strict reverse order. While
// compensation runs, the failure cause and the failed step's name are exposed
// in the shared context under FailureKey and FailedStepKey so individual
// compensations can inspect why the saga is rolling back; both markers are
// removed before the saga returns.
package saga

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/flowkit/types"
	"github.com/BaSui01/flowkit/workflow"
)

// Context keys exposed to compensations during rollback.
const (
	// FailureKey holds the error that triggered compensation.
	FailureKey = "saga.failure"
	// FailedStepKey holds the name of the step whose action failed.
	FailedStepKey = "saga.failedStep"
)

// Step is one compensable unit of a saga. Compensation is optional; a step
// without one is skipped during rollback.
type Step struct {
	Name         string
	Action       workflow.Workflow
	Compensation workflow.Workflow
}

// Saga executes an ordered, immutable list of compensable steps.
type Saga struct {
	name   string
	steps  []Step
	logger *zap.Logger
}

// Option configures a Saga.
type Option func(*Saga)

// WithLogger sets a custom zap logger (defaults to zap.NewNop()).
func WithLogger(logger *zap.Logger) Option {
	return func(s *Saga) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a saga from the given steps. An empty saga is legal and
// succeeds trivially.
func New(name string, steps []Step, opts ...Option) (*Saga, error) {
	if name == "" {
		name = "saga"
	}
	for i, step := range steps {
		if step.Name == "" {
			return nil, types.Errorf(types.ErrInvalidConfig, "saga %s: step %d has no name", name, i)
		}
		if step.Action == nil {
			return nil, types.Errorf(types.ErrMissingChild, "saga %s: step %s has no action", name, step.Name)
		}
	}
	copied := make([]Step, len(steps))
	copy(copied, steps)

	s := &Saga{
		name:   name,
		steps:  copied,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Name returns the saga name.
func (s *Saga) Name() string { return s.name }

// Type returns the workflow type tag.
func (s *Saga) Type() workflow.Type { return workflow.TypeSaga }

// Children returns the action workflows in declared order.
func (s *Saga) Children() []workflow.Workflow {
	children := make([]workflow.Workflow, len(s.steps))
	for i, step := range s.steps {
		children[i] = step.Action
	}
	return children
}

// Execute runs the forward phase and, on failure, the backward compensation
// phase.
func (s *Saga) Execute(ctx context.Context, wc *workflow.Context) *workflow.Result {
	return workflow.Run(wc, s.name, func(start time.Time) *workflow.Result {
		for i, step := range s.steps {
			if err := ctx.Err(); err != nil {
				cause := types.NewError(types.ErrCancelled, "saga cancelled").WithCause(err).WithWorkflow(s.name)
				return workflow.Failure(start, s.rollback(ctx, wc, i, step.Name, cause))
			}

			res := step.Action.Execute(ctx, wc)
			if res.Succeeded() {
				continue
			}

			// A nil result from an action counts as a failure, even though
			// no error was reported.
			var cause error
			if res != nil {
				cause = res.Err
			}
			if cause == nil {
				cause = types.Errorf(types.ErrNilResult, "step %s produced no result", step.Name).WithWorkflow(s.name)
			}

			s.logger.Warn("saga step failed, compensating",
				zap.String("saga", s.name),
				zap.String("step", step.Name),
				zap.Error(cause),
			)
			return workflow.Failure(start, s.rollback(ctx, wc, i, step.Name, cause))
		}
		return workflow.Success(start)
	})
}

// rollback compensates steps[0:failed] in reverse order and returns the
// saga's final error: the original cause, or an aggregate carrying the cause
// plus every compensation failure.
func (s *Saga) rollback(ctx context.Context, wc *workflow.Context, failed int, failedStep string, cause error) error {
	wc.Put(FailureKey, cause)
	wc.Put(FailedStepKey, failedStep)
	defer func() {
		wc.Delete(FailureKey)
		wc.Delete(FailedStepKey)
	}()

	var failures []error
	for i := failed - 1; i >= 0; i-- {
		step := s.steps[i]
		if step.Compensation == nil {
			s.logger.Debug("step has no compensation, skipping",
				zap.String("saga", s.name),
				zap.String("step", step.Name),
			)
			continue
		}

		// A compensation failure must never abort compensation of
		// earlier steps; it is recorded and rollback continues.
		res := step.Compensation.Execute(ctx, wc)
		if res.Failed() {
			var compErr error
			if res != nil {
				compErr = res.Err
			}
			if compErr == nil {
				compErr = types.Errorf(types.ErrNilResult, "compensation of step %s produced no result", step.Name)
			}
			s.logger.Error("compensation failed",
				zap.String("saga", s.name),
				zap.String("step", step.Name),
				zap.Error(compErr),
			)
			failures = append(failures, types.Errorf(types.ErrCompensation, "compensation of step %s failed", step.Name).
				WithCause(compErr))
		}
	}

	if len(failures) == 0 {
		return cause
	}
	return types.NewCompensationError(cause, failures)
}
