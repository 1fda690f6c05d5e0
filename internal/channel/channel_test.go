package channel

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/antkeeper/antkeeper/internal/state"
)

func TestLineChannelFormatsProgressAndError(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	c := &lineChannel{kind: KindLine, workflowName: "echo", initial: state.State{"prompt": "hi"}, out: &out, errOut: &errOut}

	assert.Equal(t, KindLine, c.Kind())
	assert.Equal(t, "echo", c.WorkflowName())
	assert.Equal(t, state.State{"prompt": "hi"}, c.InitialState())

	c.ReportProgress("deadbeef", "doing things")
	c.ReportError("deadbeef", "went wrong")

	assert.Equal(t, "[echo, deadbeef] doing things\n", out.String())
	assert.Equal(t, "[echo, deadbeef] went wrong\n", errOut.String())
}

func TestNewWebhookReportsWebhookKind(t *testing.T) {
	t.Parallel()

	c := NewWebhook("echo", state.State{})
	assert.Equal(t, KindWebhook, c.Kind())
}

func TestNewLineReportsLineKind(t *testing.T) {
	t.Parallel()

	c := NewLine("echo", state.State{})
	assert.Equal(t, KindLine, c.Kind())
}

func TestChannelKinds(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Kind("line-cli"), KindLine)
	assert.Equal(t, Kind("webhook"), KindWebhook)
	assert.Equal(t, Kind("thread-reply"), KindThreadReply)
}
