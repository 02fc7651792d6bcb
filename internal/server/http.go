// Package server runs the agent's local diagnostics HTTP listener.
package server

import (
	"context"
	"net/http"

	"github.com/khsolheim/tms-mobile-sync/internal/config"
	"github.com/khsolheim/tms-mobile-sync/internal/logger"
)

// HTTPServer is a thin lifecycle wrapper around net/http.Server for the
// diagnostics endpoint.
type HTTPServer struct {
	server *http.Server
	logger *logger.Logger
}

// NewHTTPServer returns nil when no listen address is configured; the
// diagnostics endpoint is optional.
func NewHTTPServer(mux http.Handler, cfg config.AgentServer, log *logger.Logger) *HTTPServer {
	if cfg.HTTPAddress == "" {
		return nil
	}
	return &HTTPServer{
		server: &http.Server{Addr: cfg.HTTPAddress, Handler: mux},
		logger: log,
	}
}

// RunServer blocks serving the listener until Shutdown is called.
func (h *HTTPServer) RunServer() {
	if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		h.logger.Err(err).Msg("diagnostics server ListenAndServe")
	}
}

// Shutdown gracefully stops the listener.
func (h *HTTPServer) Shutdown() {
	if err := h.server.Shutdown(context.Background()); err != nil {
		h.logger.Err(err).Msg("diagnostics server Shutdown")
	}
}
