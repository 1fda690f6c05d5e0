package channel

import (
	"context"
	"fmt"

	"goa.design/clue/log"

	"github.com/antkeeper/antkeeper/internal/chatapi"
	"github.com/antkeeper/antkeeper/internal/state"
)

// threadChannel is the chat thread-reply boundary. Progress and error
// reports are posted into the chat thread that originated the request; the
// chat client, channel id, and thread id are fixed at construction and
// immutable for the life of the Runner.
type threadChannel struct {
	workflowName string
	initial      state.State
	chat         chatapi.Client
	channelID    string
	threadTS     string
}

// NewThread constructs a thread-reply Channel bound to the given chat
// channel and thread timestamp. chat is used for every subsequent
// progress/error post; it is the same client the event coalescer used to
// add the mention's reaction.
func NewThread(workflowName string, initial state.State, chat chatapi.Client, channelID, threadTS string) Channel {
	return &threadChannel{
		workflowName: workflowName,
		initial:      initial,
		chat:         chat,
		channelID:    channelID,
		threadTS:     threadTS,
	}
}

func (c *threadChannel) Kind() Kind                { return KindThreadReply }
func (c *threadChannel) WorkflowName() string      { return c.workflowName }
func (c *threadChannel) InitialState() state.State { return c.initial }

func (c *threadChannel) ReportProgress(runID, message string) {
	c.post(fmt.Sprintf("[%s, %s] %s", c.workflowName, runID, message))
}

func (c *threadChannel) ReportError(runID, message string) {
	c.post(fmt.Sprintf("[%s, %s] [ERROR] %s", c.workflowName, runID, message))
}

// post sends text to the bound thread over blocking HTTP, since this
// Channel runs on the worker goroutine the Runner was dispatched to, not on
// the coalescer's own goroutine. Errors are swallowed here — boundary I/O
// faults never propagate to a handler.
func (c *threadChannel) post(text string) {
	ctx := context.Background()
	if err := c.chat.PostMessage(ctx, c.channelID, c.threadTS, text); err != nil {
		log.Error(ctx, err, log.KV{K: "msg", V: "failed to post to thread"})
	}
}
