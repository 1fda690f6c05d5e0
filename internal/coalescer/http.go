package coalescer

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/antkeeper/antkeeper/internal/config"
)

// Endpoint handles POST /slack_event: it decodes the envelope, answers the
// URL verification handshake unconditionally, enforces the
// BOT_TOKEN/BOT_USER_ID precondition for everything else, and otherwise
// routes through the Coalescer.
type Endpoint struct {
	Coalescer *Coalescer
}

// NewEndpoint constructs an Endpoint bound to c.
func NewEndpoint(c *Coalescer) *Endpoint {
	return &Endpoint{Coalescer: c}
}

type challengeResponse struct {
	Challenge string `json:"challenge"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type detailResponse struct {
	Detail string `json:"detail"`
}

// ServeHTTP implements http.Handler.
func (e *Endpoint) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var env Envelope
	if err := json.NewDecoder(req.Body).Decode(&env); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, detailResponse{Detail: "malformed request body"})
		return
	}

	if env.Type == "url_verification" {
		writeJSON(w, http.StatusOK, challengeResponse{Challenge: env.Challenge})
		return
	}

	_, botUserID, missing := config.BotCredentials()
	if len(missing) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, detailResponse{
			Detail: "Missing required environment variables: " + strings.Join(missing, ", "),
		})
		return
	}

	if !env.HasEvent() {
		writeJSON(w, http.StatusOK, okResponse{OK: true})
		return
	}

	ev, err := env.DecodeEvent()
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, detailResponse{Detail: "malformed event payload"})
		return
	}

	e.Coalescer.HandleEvent(context.Background(), botUserID, ev)
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
