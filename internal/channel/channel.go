// Package channel implements the three I/O boundary variants a Runner can
// be bound to: line-oriented (stdout/stderr), webhook (server log), and
// thread-reply (chat API). All three share the capability set the
// specification requires — a workflow name, an initial State, and
// progress/error reporting keyed by run id — formatted per boundary.
package channel

import "github.com/antkeeper/antkeeper/internal/state"

// Kind tags which boundary variant a Channel is.
type Kind string

const (
	// KindLine identifies the command-line front-end boundary.
	KindLine Kind = "line-cli"
	// KindWebhook identifies the HTTP webhook dispatcher boundary.
	KindWebhook Kind = "webhook"
	// KindThreadReply identifies the chat thread-reply boundary.
	KindThreadReply Kind = "thread-reply"
)

// Channel is the I/O boundary a Runner is bound to: it carries the initial
// state and workflow name for one invocation, and receives progress/error
// reports during execution.
type Channel interface {
	// Kind identifies which boundary variant this is.
	Kind() Kind
	// WorkflowName is the handler name to resolve and execute.
	WorkflowName() string
	// InitialState is the state a Runner seeds its execution with, before
	// framework-owned keys (run_id, workflow_name) are set on top.
	InitialState() state.State
	// ReportProgress delivers a progress message for the given run id to
	// this boundary's progress sink.
	ReportProgress(runID, message string)
	// ReportError delivers an error message for the given run id to this
	// boundary's error sink.
	ReportError(runID, message string)
}
