// Package chatapi implements the minimal outbound surface the event
// coalescer and thread-reply channel need from a chat platform's HTTP API:
// adding a reaction to a message and posting a message into a thread. The
// specification models this generically ("the third-party chat API") rather
// than naming a vendor; the request shapes below match the Events
// API-style service this was distilled from (reactions.add, chat.postMessage)
// closely enough to be a faithful stand-in without depending on a vendor
// SDK that isn't part of this module's domain stack.
package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client posts reactions and thread messages on behalf of a bot identity.
// Implementations must treat all failures as swallowable: per the
// specification, boundary I/O faults are logged and never propagated to a
// handler or to coalescer state.
type Client interface {
	// AddReaction attaches name (e.g. "thumbsup") to the message at
	// timestamp in channel.
	AddReaction(ctx context.Context, channel, timestamp, name string) error
	// PostMessage posts text into the thread rooted at threadTS in channel.
	PostMessage(ctx context.Context, channel, threadTS, text string) error
}

// HTTPClient is the production Client: it calls a chat API's HTTP endpoints
// with a bearer token, the way the reference implementation's synchronous
// httpx calls did.
type HTTPClient struct {
	// BaseURL is the API root, e.g. "https://slack.com/api". Overridable
	// for tests.
	BaseURL string
	// Token is called fresh on every request to produce the bearer token,
	// the same way coalescer.New's cooldown func() time.Duration parameter
	// lets COOLDOWN_SECONDS be perturbed between calls rather than cached
	// at construction time: BOT_TOKEN must be re-readable at event-handling
	// time, not baked in at startup.
	Token func() string
	// HTTP is the client used for requests; defaults to a client with a
	// short timeout if nil.
	HTTP *http.Client
}

// NewHTTPClient constructs an HTTPClient against the given base URL. token
// is invoked on every outbound call to produce the current bearer token.
func NewHTTPClient(baseURL string, token func() string) *HTTPClient {
	return &HTTPClient{
		BaseURL: baseURL,
		Token:   token,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// AddReaction implements Client.
func (c *HTTPClient) AddReaction(ctx context.Context, channel, timestamp, name string) error {
	return c.call(ctx, "reactions.add", map[string]string{
		"channel":   channel,
		"timestamp": timestamp,
		"name":      name,
	})
}

// PostMessage implements Client.
func (c *HTTPClient) PostMessage(ctx context.Context, channel, threadTS, text string) error {
	return c.call(ctx, "chat.postMessage", map[string]string{
		"channel":   channel,
		"thread_ts": threadTS,
		"text":      text,
	})
}

func (c *HTTPClient) call(ctx context.Context, method string, payload map[string]string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", method, err)
	}
	url := c.BaseURL + "/" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token())

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("call %s: unexpected status %d", method, resp.StatusCode)
	}
	return nil
}
