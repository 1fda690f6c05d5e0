// Package coalescer implements the debounced chat event coalescer: it
// turns a bursty stream of chat events into at most one workflow dispatch
// per logical conversation, keyed by the timestamp of the message that
// first mentioned the bot.
//
// The pending map is mutated from HTTP handler goroutines (one per request)
// and from cooldown timer goroutines (on expiry); every access holds one
// mutex, which stands in for the reference implementation's single cooperative
// scheduler, giving the same "no coalescer operation is interrupted
// mid-mutation" guarantee without requiring a dedicated event-loop
// goroutine.
package coalescer

import (
	"context"
	"strings"
	"sync"
	"time"

	"goa.design/clue/log"

	"github.com/antkeeper/antkeeper/internal/apperr"
	"github.com/antkeeper/antkeeper/internal/chatapi"
	"github.com/antkeeper/antkeeper/internal/channel"
	"github.com/antkeeper/antkeeper/internal/registry"
	"github.com/antkeeper/antkeeper/internal/runner"
	"github.com/antkeeper/antkeeper/internal/state"
)

// Key identifies a pending message: the channel it was posted in and the
// immutable timestamp of the first message that mentioned the bot.
type Key struct {
	ChannelID string
	TS        string
}

// pending is the coalesced state of one in-flight chat request.
type pending struct {
	user         string
	text         string
	files        []any
	workflowName string
	// generation guards against a canceled timer's sleep completing after
	// a new timer has already been armed for the same key: the timer body
	// only acts if its own generation still matches this field at wake time.
	generation int
	timer      *time.Timer
}

// Coalescer maintains the pending map and arms/disarms cooldown timers.
// The zero value is not usable; construct with New.
type Coalescer struct {
	mu       sync.Mutex
	pending  map[Key]*pending
	registry *registry.Registry
	chat     chatapi.Client
	cooldown func() time.Duration
}

// New constructs a Coalescer bound to reg for workflow resolution and chat
// for outbound reactions/messages. cooldown is called fresh on every timer
// arm so tests and operators can change COOLDOWN_SECONDS between events.
func New(reg *registry.Registry, chat chatapi.Client, cooldown func() time.Duration) *Coalescer {
	return &Coalescer{
		pending:  make(map[Key]*pending),
		registry: reg,
		chat:     chat,
		cooldown: cooldown,
	}
}

// PendingCount reports the number of currently pending keys. Exposed for
// tests verifying the "cancel leaves the map empty" and "exactly one
// pending entry" invariants.
func (c *Coalescer) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// mentionToken returns the literal mention syntax for a bot user id, e.g.
// "<@U1234>".
func mentionToken(botUserID string) string {
	return "<@" + botUserID + ">"
}

// stripMention removes the first occurrence of the bot's mention token from
// text and trims surrounding whitespace.
func stripMention(text, botUserID string) string {
	return strings.TrimSpace(strings.Replace(text, mentionToken(botUserID), "", 1))
}

// firstToken returns the first whitespace-delimited token of s.
func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// HandleEvent routes one decoded Event per the fixed precedence order:
// thread reply, edit, delete, new mention, fallthrough. It assumes the
// caller has already handled url_verification and the missing-credentials
// check; HandleEvent is only reached for event_callback payloads with
// credentials present.
func (c *Coalescer) HandleEvent(ctx context.Context, botUserID string, ev Event) {
	if ev.BotID != "" {
		return
	}

	if ev.ThreadTS != "" && ev.ThreadTS != ev.TS {
		c.handleThreadReply(ctx, ev)
		return
	}

	switch ev.Subtype {
	case "message_changed":
		c.handleEdit(ev, botUserID)
		return
	case "message_deleted":
		c.handleDelete(ev)
		return
	}

	if ev.Type == "app_mention" || (ev.Type == "message" && (ev.Subtype == "" || ev.Subtype == "file_share")) {
		if strings.Contains(ev.Text, mentionToken(botUserID)) {
			c.handleNewMention(ctx, botUserID, ev)
			return
		}
	}
	// Fallthrough: no-op.
}

func (c *Coalescer) handleThreadReply(ctx context.Context, ev Event) {
	key := Key{ChannelID: ev.Channel, TS: ev.ThreadTS}

	c.mu.Lock()
	p, ok := c.pending[key]
	if !ok {
		c.mu.Unlock()
		return
	}
	p.text += "\n" + ev.Text
	p.files = append(p.files, ev.Files...)
	c.rearm(key, p)
	c.mu.Unlock()

	c.reactThumbsUp(ctx, ev.Channel, ev.TS)
}

func (c *Coalescer) handleEdit(ev Event, botUserID string) {
	edited := ev.EditedMessage
	if edited == nil {
		return
	}
	key := Key{ChannelID: ev.Channel, TS: edited.TS}

	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending[key]
	if !ok {
		return
	}
	p.text = stripMention(edited.Text, botUserID)
	c.rearm(key, p)
}

func (c *Coalescer) handleDelete(ev Event) {
	key := Key{ChannelID: ev.Channel, TS: ev.DeletedTS}

	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending[key]
	if !ok {
		return
	}
	p.timer.Stop()
	delete(c.pending, key)
}

func (c *Coalescer) handleNewMention(ctx context.Context, botUserID string, ev Event) {
	key := Key{ChannelID: ev.Channel, TS: ev.TS}

	c.mu.Lock()
	if _, exists := c.pending[key]; exists {
		c.mu.Unlock()
		return
	}
	cleaned := stripMention(ev.Text, botUserID)
	p := &pending{
		user:         ev.User,
		text:         cleaned,
		files:        append([]any(nil), ev.Files...),
		workflowName: firstToken(cleaned),
	}
	c.pending[key] = p
	c.arm(key, p)
	c.mu.Unlock()

	c.reactThumbsUp(ctx, ev.Channel, ev.TS)
}

// rearm cancels p's current timer and starts a fresh one for key. Must be
// called with c.mu held.
func (c *Coalescer) rearm(key Key, p *pending) {
	if p.timer != nil {
		p.timer.Stop()
	}
	c.arm(key, p)
}

// arm starts a new cooldown timer for key, bumping p's generation so a
// late-firing predecessor recognizes it has been superseded. Must be
// called with c.mu held.
func (c *Coalescer) arm(key Key, p *pending) {
	p.generation++
	gen := p.generation
	cooldown := c.cooldown()
	p.timer = time.AfterFunc(cooldown, func() {
		c.fire(key, gen)
	})
}

// fire is the timer-expiry body. It re-validates that key is still pending
// and bound to the generation that scheduled this wake before dispatching,
// so a cancellation racing with expiry never produces a stale dispatch.
func (c *Coalescer) fire(key Key, gen int) {
	c.mu.Lock()
	p, ok := c.pending[key]
	if !ok || p.generation != gen {
		c.mu.Unlock()
		return
	}
	delete(c.pending, key)
	c.mu.Unlock()

	c.dispatch(key, p)
}

// dispatch runs the workflow a fired pending message names. It runs on the
// timer's own goroutine (already off the HTTP request path) after fire has
// released the mutex, so a running workflow never blocks the pending map.
func (c *Coalescer) dispatch(key Key, p *pending) {
	ctx := context.Background()
	c.postThread(ctx, key.ChannelID, key.TS, "Processing your request…")

	if !c.registry.Has(p.workflowName) {
		c.postThread(ctx, key.ChannelID, key.TS, "Unknown workflow: "+p.workflowName)
		return
	}

	initial := state.State{"prompt": p.text, "slack_user": p.user}
	if len(p.files) > 0 {
		initial["files"] = p.files
	}
	ch := channel.NewThread(p.workflowName, initial, c.chat, key.ChannelID, key.TS)

	r, err := runner.New(ctx, c.registry, ch)
	if err != nil {
		log.Error(ctx, err, log.KV{K: "msg", V: "failed to construct runner for coalesced dispatch"})
		return
	}
	defer r.Close()

	_, err = r.Run(c.registry)
	if err == nil {
		return
	}
	if apperr.IsWorkflowFailed(err) {
		log.Info(ctx, log.KV{K: "msg", V: "workflow failed"}, log.KV{K: "run_id", V: r.ID()}, log.KV{K: "err", V: err.Error()})
		return
	}
	log.Error(ctx, err, log.KV{K: "msg", V: "unexpected fault during coalesced dispatch"}, log.KV{K: "run_id", V: r.ID()})
}

func (c *Coalescer) reactThumbsUp(ctx context.Context, channelID, ts string) {
	if err := c.chat.AddReaction(ctx, channelID, ts, "thumbsup"); err != nil {
		log.Error(ctx, err, log.KV{K: "msg", V: "failed to add reaction"})
	}
}

func (c *Coalescer) postThread(ctx context.Context, channelID, threadTS, text string) {
	if err := c.chat.PostMessage(ctx, channelID, threadTS, text); err != nil {
		log.Error(ctx, err, log.KV{K: "msg", V: "failed to post to thread"})
	}
}
