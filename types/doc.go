// Package types defines the shared error taxonomy of the flowkit engine.
//
// Runtime failures are never raised out of a workflow's Execute; they are
// captured into the returned result with one of the structured errors defined
// here attached, so callers can branch on the error code instead of matching
// message strings.
package types
