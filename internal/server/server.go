// Package server exposes the bridge's HTTP surface: the Telegram webhook
// intake and a liveness endpoint for uptime pingers.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mymmrac/telego"
)

// maxWebhookBody bounds the accepted update size. Telegram updates are
// small; anything bigger is not from Telegram.
const maxWebhookBody = 1 << 20

// UpdateProcessor consumes a decoded Telegram update.
type UpdateProcessor interface {
	ProcessUpdate(ctx context.Context, update telego.Update)
}

// Server is the HTTP front of the bridge.
type Server struct {
	httpServer *http.Server
	processor  UpdateProcessor
	secret     string
}

// New builds the server. secret is the webhook path segment; requests are
// only routed when it matches exactly.
func New(host string, port int, secret string, processor UpdateProcessor) *Server {
	s := &Server{processor: processor, secret: secret}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	// Original deployment path, kept for existing cron pingers.
	mux.HandleFunc("GET /keep_alive", s.handleHealth)
	mux.HandleFunc("POST /webhook/"+secret, s.handleWebhook)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", host, port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start runs the listener until Shutdown. Blocks.
func (s *Server) Start() error {
	slog.Info("http server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and drains in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// handleHealth returns the fixed liveness acknowledgment.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"status":"running"}`)
}

// handleWebhook decodes one Telegram update and processes it to completion
// before acknowledging. Telegram retries on non-2xx; a bad payload is
// acknowledged anyway since a retry cannot fix it.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody+1))
	if err != nil {
		http.Error(w, "read error", http.StatusBadRequest)
		return
	}
	if len(body) > maxWebhookBody {
		http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
		return
	}

	var update telego.Update
	if err := json.Unmarshal(body, &update); err != nil {
		slog.Warn("webhook payload rejected", "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	s.processor.ProcessUpdate(r.Context(), update)
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}
