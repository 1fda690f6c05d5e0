// Package httpapi implements the webhook dispatcher (POST /webhook). The
// chat event endpoint (POST /slack_event) lives in package coalescer. The
// dispatcher is thin: validate, construct a Channel and a Runner, and hand
// execution to a background goroutine so the request returns before the
// handler completes.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"goa.design/clue/log"

	"github.com/antkeeper/antkeeper/internal/apperr"
	"github.com/antkeeper/antkeeper/internal/channel"
	"github.com/antkeeper/antkeeper/internal/registry"
	"github.com/antkeeper/antkeeper/internal/runner"
	"github.com/antkeeper/antkeeper/internal/state"
)

// WebhookDispatcher handles POST /webhook: it validates the named workflow
// exists, constructs a webhook Channel and a Runner, and dispatches
// execution in the background, returning the run id before the handler
// completes.
type WebhookDispatcher struct {
	Registry *registry.Registry
}

// NewWebhookDispatcher constructs a WebhookDispatcher bound to reg.
func NewWebhookDispatcher(reg *registry.Registry) *WebhookDispatcher {
	return &WebhookDispatcher{Registry: reg}
}

type webhookRequest struct {
	WorkflowName string      `json:"workflow_name"`
	InitialState state.State `json:"initial_state"`
}

type webhookResponse struct {
	RunID string `json:"run_id"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// ServeHTTP implements http.Handler.
func (d *WebhookDispatcher) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var body webhookRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: "malformed request body"})
		return
	}
	if body.WorkflowName == "" {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: "workflow_name is required"})
		return
	}
	if !d.Registry.Has(body.WorkflowName) {
		writeJSON(w, http.StatusNotFound, errorResponse{Detail: "unknown workflow: " + body.WorkflowName})
		return
	}

	initial := body.InitialState
	if initial == nil {
		initial = state.State{}
	}
	ch := channel.NewWebhook(body.WorkflowName, initial)

	r, err := runner.New(context.Background(), d.Registry, ch)
	if err != nil {
		log.Error(req.Context(), err, log.KV{K: "msg", V: "failed to construct runner"})
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "failed to start run"})
		return
	}

	go dispatch(r, d.Registry)

	writeJSON(w, http.StatusOK, webhookResponse{RunID: r.ID()})
}

// dispatch runs r to completion on a background goroutine. Per the
// specification's failure policy, a workflow-failed error is swallowed
// after logging — the per-run log and the Channel already carry it — while
// any other fault is logged loudly so an operator can notice it, but never
// crashes the process.
func dispatch(r *runner.Runner, reg *registry.Registry) {
	defer r.Close()
	ctx := r.Context()
	_, err := r.Run(reg)
	if err == nil {
		return
	}
	if apperr.IsWorkflowFailed(err) {
		log.Info(ctx, log.KV{K: "msg", V: "workflow failed"}, log.KV{K: "run_id", V: r.ID()}, log.KV{K: "err", V: err.Error()})
		return
	}
	log.Error(ctx, err, log.KV{K: "msg", V: "unexpected fault during background dispatch"}, log.KV{K: "run_id", V: r.ID()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
