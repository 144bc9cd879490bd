package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unified error code across the engine.
type ErrorCode string

// Execution error codes
const (
	ErrTaskFailed    ErrorCode = "TASK_FAILED"
	ErrTimeout       ErrorCode = "TIMEOUT"
	ErrTaskPanic     ErrorCode = "TASK_PANIC"
	ErrNilResult     ErrorCode = "NIL_RESULT"
	ErrSubmitFailed  ErrorCode = "SUBMIT_FAILED"
	ErrBranchFailed  ErrorCode = "BRANCH_FAILED"
	ErrNoBranch      ErrorCode = "NO_BRANCH"
	ErrBadCollection ErrorCode = "BAD_COLLECTION"
	ErrChaosFault    ErrorCode = "CHAOS_FAULT"
	ErrCancelled     ErrorCode = "CANCELLED"
	ErrInterrupted   ErrorCode = "RATE_LIMIT_INTERRUPTED"
	ErrCompensation  ErrorCode = "SAGA_COMPENSATION"
)

// Build-time error codes
const (
	ErrInvalidConfig ErrorCode = "INVALID_CONFIG"
	ErrMissingChild  ErrorCode = "MISSING_CHILD"
	ErrNotRegistered ErrorCode = "NOT_REGISTERED"
)

// Error represents a structured engine error with code, message, and metadata.
type Error struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Workflow  string    `json:"workflow,omitempty"`
	Retryable bool      `json:"retryable"`
	Cause     error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Errorf creates a new Error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithWorkflow records the workflow that produced the error.
func (e *Error) WithWorkflow(name string) *Error {
	e.Workflow = name
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}

// GetErrorCode extracts the error code from an error, unwrapping as needed.
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsTimeout reports whether the error is an attempt-timeout error.
func IsTimeout(err error) bool {
	return GetErrorCode(err) == ErrTimeout
}

// CompensationError aggregates the original saga failure with every
// compensation failure collected during rollback. Cause is always non-nil;
// Failures holds one entry per compensation that itself failed, in the
// reverse-step order they were attempted.
type CompensationError struct {
	Cause    error
	Failures []error
}

// Error implements the error interface.
func (e *CompensationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] saga failed: %v", ErrCompensation, e.Cause)
	fmt.Fprintf(&b, " (%d compensation failure(s):", len(e.Failures))
	for i, f := range e.Failures {
		if i > 0 {
			b.WriteString(";")
		}
		fmt.Fprintf(&b, " %v", f)
	}
	b.WriteString(")")
	return b.String()
}

// Unwrap returns the original failure that triggered compensation.
func (e *CompensationError) Unwrap() error {
	return e.Cause
}

// NewCompensationError creates a CompensationError from the original failure
// cause and the collected compensation failures.
func NewCompensationError(cause error, failures []error) *CompensationError {
	return &CompensationError{Cause: cause, Failures: failures}
}
