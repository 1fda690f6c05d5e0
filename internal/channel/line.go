package channel

import (
	"fmt"
	"io"
	"os"

	"github.com/antkeeper/antkeeper/internal/state"
)

// lineChannel backs both the line-cli and webhook boundaries: the
// specification's boundary table gives them identical sinks (standard
// output for progress, standard error for errors) and identical progress
// formatting, differing only in the Kind tag they report. Keeping one
// implementation behind two named constructors avoids two copies of the
// same eight lines while still letting call sites and tests distinguish
// the boundaries by Kind.
type lineChannel struct {
	kind         Kind
	workflowName string
	initial      state.State
	out, errOut  io.Writer
}

// NewLine constructs a line-cli Channel: progress to stdout, errors to
// stderr.
func NewLine(workflowName string, initial state.State) Channel {
	return &lineChannel{kind: KindLine, workflowName: workflowName, initial: initial, out: os.Stdout, errOut: os.Stderr}
}

// NewWebhook constructs a webhook Channel. Per the specification's boundary
// table this uses the same sinks and formatting as the line-cli boundary —
// "server log" here just means the process's own stdout/stderr, since the
// webhook dispatcher runs in the same process as any other CLI invocation.
func NewWebhook(workflowName string, initial state.State) Channel {
	return &lineChannel{kind: KindWebhook, workflowName: workflowName, initial: initial, out: os.Stdout, errOut: os.Stderr}
}

func (c *lineChannel) Kind() Kind                  { return c.kind }
func (c *lineChannel) WorkflowName() string        { return c.workflowName }
func (c *lineChannel) InitialState() state.State   { return c.initial }

func (c *lineChannel) ReportProgress(runID, message string) {
	fmt.Fprintf(c.out, "[%s, %s] %s\n", c.workflowName, runID, message)
}

func (c *lineChannel) ReportError(runID, message string) {
	fmt.Fprintf(c.errOut, "[%s, %s] %s\n", c.workflowName, runID, message)
}
