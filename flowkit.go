// Package flowkit provides a top-level convenience entry point for composing
// workflows with minimal boilerplate.
//
// Usage:
//
//	import "github.com/BaSui01/flowkit"
//
//	charge, _ := flowkit.NewTask("charge", chargeFn)
//	refund, _ := flowkit.NewTask("refund", refundFn)
//	flow, _ := flowkit.NewSequential("checkout", []flowkit.Workflow{charge, refund})
//
//	wc := flowkit.NewContext()
//	result := flow.Execute(context.Background(), wc)
//
// These are thin aliases over the workflow package; use this package when you
// prefer the shorter import path.
package flowkit

import (
	"github.com/BaSui01/flowkit/workflow"
)

// Workflow is the unit of execution. See [workflow.Workflow].
type Workflow = workflow.Workflow

// Context carries shared state across a workflow run. See [workflow.Context].
type Context = workflow.Context

// Result reports the outcome of an execution. See [workflow.Result].
type Result = workflow.Result

// TaskFunc is the signature of a plain task body.
type TaskFunc = workflow.TaskFunc

// NewContext creates an empty execution context.
var NewContext = workflow.NewContext

// NewTask wraps a function as a workflow.
var NewTask = workflow.NewTask

// NewSequential runs children in order, stopping at the first failure.
var NewSequential = workflow.NewSequential

// NewParallel runs children concurrently.
var NewParallel = workflow.NewParallel

// NewConditional picks a branch from a predicate.
var NewConditional = workflow.NewConditional

// NewRouting dispatches to a named branch from a selector.
var NewRouting = workflow.NewRouting

// NewFallback runs a secondary workflow when the primary fails.
var NewFallback = workflow.NewFallback

// NewRepeat runs a child a fixed number of times.
var NewRepeat = workflow.NewRepeat

// NewForEach runs a child once per element of a context collection.
var NewForEach = workflow.NewForEach

// NewRateLimited gates a child behind a rate limiter.
var NewRateLimited = workflow.NewRateLimited

// NewTimeout bounds a child's execution time.
var NewTimeout = workflow.NewTimeout

// NewChaos injects faults into a child for resilience testing.
var NewChaos = workflow.NewChaos

// WithLogger sets a custom zap logger on a workflow.
var WithLogger = workflow.WithLogger
