// Package server wires the webhook dispatcher and chat event endpoint into
// one HTTP server, the way example/cmd/assistant's http.go wires its own
// routes, including graceful shutdown on context cancellation.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"goa.design/clue/log"

	"github.com/antkeeper/antkeeper/internal/chatapi"
	"github.com/antkeeper/antkeeper/internal/coalescer"
	"github.com/antkeeper/antkeeper/internal/config"
	"github.com/antkeeper/antkeeper/internal/httpapi"
	"github.com/antkeeper/antkeeper/internal/registry"
)

// Server bundles the HTTP mux and the coalescer it drives.
type Server struct {
	http      *http.Server
	Coalescer *coalescer.Coalescer
}

// New constructs a Server bound to reg, listening on addr. chatBaseURL
// configures the outbound chat API client the coalescer and thread-reply
// channels use; its bearer token is re-read from BOT_TOKEN on every
// outbound call rather than cached here, so rotating the token at runtime
// takes effect immediately.
func New(addr string, reg *registry.Registry, chatBaseURL string) *Server {
	chat := chatapi.NewHTTPClient(chatBaseURL, botToken)
	c := coalescer.New(reg, chat, config.Cooldown)

	mux := http.NewServeMux()
	mux.Handle("POST /webhook", httpapi.NewWebhookDispatcher(reg))
	mux.Handle("POST /slack_event", coalescer.NewEndpoint(c))

	return &Server{
		http: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
		Coalescer: c,
	}
}

// botToken reads BOT_TOKEN fresh, matching config.BotCredentials' own
// read-at-call-time contract.
func botToken() string {
	token, _, _ := config.BotCredentials()
	return token
}

// Run starts serving and blocks until ctx is canceled, at which point it
// shuts the server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Print(ctx, log.KV{K: "msg", V: "listening"}, log.KV{K: "addr", V: s.http.Addr})
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("serve: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Print(context.Background(), log.KV{K: "msg", V: "shutting down"})
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}
