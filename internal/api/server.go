// ABOUTME: HTTP server for the messagely API with route registration and lifecycle
// ABOUTME: Composes the auth middleware chain per route and handles graceful shutdown

package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/2389/messagely/internal/auth"
	"github.com/2389/messagely/internal/config"
	"github.com/2389/messagely/internal/store"
)

// Server is the messagely HTTP server.
type Server struct {
	cfg        *config.Config
	store      store.Store
	hasher     *auth.PasswordHasher
	verifier   *auth.JWTVerifier
	logger     *slog.Logger
	httpServer *http.Server
}

// New creates a server with the given configuration and store.
// The store is owned by the caller; Shutdown does not close it.
func New(cfg *config.Config, st store.Store, logger *slog.Logger) (*Server, error) {
	verifier, err := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("creating token verifier: %w", err)
	}

	s := &Server{
		cfg:      cfg,
		store:    st,
		hasher:   auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		verifier: verifier,
		logger:   logger.With("component", "api"),
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           s.withRequestID(s.routes()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// routes builds the route table, composing the middleware subset each
// route needs.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Health endpoints - no auth required
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /health/ready", s.handleReady)

	// Auth endpoints - no token required
	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)

	authenticate := auth.Authenticate(s.verifier)
	requireLogin := auth.RequireLogin()
	requireMatch := auth.RequireMatchingUser()

	// User endpoints
	mux.Handle("GET /users",
		auth.Chain(http.HandlerFunc(s.handleListUsers), authenticate, requireLogin))
	mux.Handle("GET /users/{username}",
		auth.Chain(http.HandlerFunc(s.handleGetUser), authenticate, requireLogin, requireMatch))
	mux.Handle("GET /users/{username}/to",
		auth.Chain(http.HandlerFunc(s.handleMessagesTo), authenticate, requireLogin, requireMatch))
	mux.Handle("GET /users/{username}/from",
		auth.Chain(http.HandlerFunc(s.handleMessagesFrom), authenticate, requireLogin, requireMatch))

	// Message endpoints - sender/recipient checks happen in the handlers
	mux.Handle("GET /messages/{id}",
		auth.Chain(http.HandlerFunc(s.handleGetMessage), authenticate, requireLogin))
	mux.Handle("POST /messages",
		auth.Chain(http.HandlerFunc(s.handleCreateMessage), authenticate, requireLogin))
	mux.Handle("POST /messages/{id}/read",
		auth.Chain(http.HandlerFunc(s.handleMarkRead), authenticate, requireLogin))

	return mux
}

// withRequestID attaches a request ID to the response and debug logs.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		s.logger.Debug("request", "id", id, "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// Run serves HTTP until the context is canceled or the server fails,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Server.HTTPAddr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		s.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := s.gracefulShutdown()

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() intentionally since the original context is already canceled.
func (s *Server) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// handleHealth returns 200 OK if the server is alive.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady returns 200 OK if the store is reachable.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Error("store not reachable", "error", err)
		writeError(w, http.StatusServiceUnavailable, "store not reachable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
