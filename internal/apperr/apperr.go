// Package apperr defines the failure kinds Antkeeper distinguishes at its
// I/O boundaries.
//
// WorkflowFailed marks an expected, handler-signaled termination ("this run
// is unrecoverable but expected"); any other error propagating out of a
// handler or the framework below it is an unexpected fault. Boundaries use
// errors.As against WorkflowFailed to decide how loudly to surface a
// failure, per the policy in the specification's error handling design.
package apperr

import (
	"errors"
	"fmt"
)

// WorkflowFailed is raised by Runner.Fail or by resolving an unknown
// workflow name at dispatch time. It preserves an optional cause the way the
// teacher's ToolError chain does, so errors.Is/errors.As keep working across
// wraps.
type WorkflowFailed struct {
	Message string
	Cause   error
}

// NewWorkflowFailed constructs a WorkflowFailed with no wrapped cause.
func NewWorkflowFailed(message string) *WorkflowFailed {
	return &WorkflowFailed{Message: message}
}

// WorkflowFailedf formats a message and returns it as a WorkflowFailed.
func WorkflowFailedf(format string, args ...any) *WorkflowFailed {
	return &WorkflowFailed{Message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *WorkflowFailed) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Cause.Error())
	}
	return e.Message
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (e *WorkflowFailed) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// IsWorkflowFailed reports whether err is, or wraps, a WorkflowFailed —
// the boundary-level test for "expected failure" versus "unexpected fault".
func IsWorkflowFailed(err error) bool {
	var wf *WorkflowFailed
	return errors.As(err, &wf)
}
