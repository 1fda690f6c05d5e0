package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antkeeper/antkeeper/internal/registry"
	"github.com/antkeeper/antkeeper/internal/state"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	dir := t.TempDir()
	reg := registry.New()
	reg.LogDir = filepath.Join(dir, "logs")
	reg.StateDir = filepath.Join(dir, "state")
	reg.Register("echo", func(r registry.Runner, s state.State) (state.State, error) {
		out := state.Clone(s)
		out["echoed"] = s["prompt"]
		return out, nil
	})

	s := New("127.0.0.1:0", reg, "http://127.0.0.1:0")
	ts := httptest.NewServer(s.http.Handler)
	t.Cleanup(ts.Close)
	return s, ts
}

func TestWebhookEndToEndThroughMux(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t)

	body, _ := json.Marshal(map[string]any{"workflow_name": "echo", "initial_state": map[string]any{"prompt": "hi"}})
	resp, err := http.Post(ts.URL+"/webhook", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSlackEventURLVerificationThroughMux(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t)

	body, _ := json.Marshal(map[string]any{"type": "url_verification", "challenge": "abc123"})
	resp, err := http.Post(ts.URL+"/slack_event", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "abc123", out["challenge"])
}

func TestSlackEventMissingCredentialsThroughMux(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("BOT_USER_ID", "")

	_, ts := newTestServer(t)

	body, _ := json.Marshal(map[string]any{"type": "event_callback", "event": map[string]any{"type": "app_mention"}})
	resp, err := http.Post(ts.URL+"/slack_event", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestRunShutsDownOnContextCancel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	reg := registry.New()
	reg.LogDir = filepath.Join(dir, "logs")
	reg.StateDir = filepath.Join(dir, "state")
	s := New("127.0.0.1:0", reg, "http://127.0.0.1:0")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}
