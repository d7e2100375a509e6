// Package api exposes the assistant over HTTP.
//
// Endpoints:
//
//	POST   /api/assist          - route one request through the assistant
//	GET    /api/contacts        - list contacts
//	POST   /api/contacts        - create a contact
//	DELETE /api/contacts/{key}  - delete a contact and their conversations
//	GET    /health              - liveness probe
//	GET    /ready               - readiness probe (database ping)
//
// File structure:
//   - server.go: HTTP server setup and lifecycle
//   - middleware.go: recovery, request id, logging, CORS
//   - ratelimit.go: per-client rate limiting
//   - health.go: health check endpoints
//   - assist.go: the assist endpoint
//   - contacts.go: contact management endpoints
//   - response.go: JSON response helpers
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

const (
	// DefaultAddr is the default address for the HTTP server.
	DefaultAddr = "127.0.0.1:8385"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout bounds header reads to shut out slowloris clients.
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is the maximum duration for writing the response.
	// Assist requests wait on the model, so this is generous.
	WriteTimeout = 120 * time.Second

	// IdleTimeout is the keep-alive idle limit.
	IdleTimeout = 120 * time.Second
)

// Options tunes the server's outer surface.
type Options struct {
	// CORSOrigins lists origins allowed to call the API from a browser.
	// Empty disables CORS headers entirely.
	CORSOrigins []string

	// TrustProxy trusts X-Forwarded-For / X-Real-IP when identifying
	// clients for rate limiting. Enable only behind a reverse proxy.
	TrustProxy bool
}

// Server is the assistant's HTTP server.
type Server struct {
	mux    *http.ServeMux
	opts   Options
	logger *slog.Logger

	health   *HealthHandler
	assist   *AssistHandler
	contacts *ContactsHandler
	limiter  *clientLimiter
}

// NewServer creates a server with all routes registered. Any handler
// dependency may be nil; the affected routes then respond 503.
func NewServer(router Assistant, store ContactStore, collections CollectionDeleter, pinger Pinger, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	s := &Server{
		mux:      mux,
		opts:     opts,
		logger:   logger,
		health:   NewHealthHandler(pinger, logger),
		assist:   NewAssistHandler(router, logger),
		contacts: NewContactsHandler(store, collections, logger),
		limiter:  newClientLimiter(defaultRateLimit, defaultRateBurst, opts.TrustProxy),
	}

	s.health.RegisterRoutes(mux)
	s.assist.RegisterRoutes(mux)
	s.contacts.RegisterRoutes(mux)

	return s
}

// Handler returns the HTTP handler with middleware applied.
// Order: recovery → request id → logging → CORS → rate limit → routes.
func (s *Server) Handler() http.Handler {
	return chain(s.mux,
		recoveryMiddleware(s.logger),
		requestIDMiddleware,
		loggingMiddleware(s.logger),
		corsMiddleware(s.opts.CORSOrigins),
		s.limiter.middleware,
	)
}

// Run starts the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
