// Package server exposes PixelPad over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/pixelpad/internal/config"
	"github.com/jmylchreest/pixelpad/internal/render"
	"github.com/jmylchreest/pixelpad/internal/session"
	"github.com/jmylchreest/pixelpad/internal/user"
)

// shutdownTimeout bounds how long in-flight requests may run after Run's context ends.
const shutdownTimeout = 10 * time.Second

// Server serves the colour and account endpoints.
type Server struct {
	cfg        *config.Config
	logger     hclog.Logger
	sessions   *session.Registry
	dispatcher *render.Dispatcher
	users      user.Store
	router     chi.Router
}

// Builder assembles a Server.
type Builder struct {
	cfg      *config.Config
	logger   hclog.Logger
	sessions *session.Registry
	users    user.Store
}

// NewBuilder creates a Builder with default configuration and a fresh session registry.
func NewBuilder() *Builder {
	return &Builder{
		cfg:      config.DefaultConfig(),
		logger:   hclog.NewNullLogger(),
		sessions: session.NewRegistry(),
	}
}

// WithConfig sets the service configuration.
func (b *Builder) WithConfig(cfg *config.Config) *Builder {
	b.cfg = cfg
	return b
}

// WithLogger sets the root logger.
func (b *Builder) WithLogger(logger hclog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithSessions shares an existing session registry.
func (b *Builder) WithSessions(reg *session.Registry) *Builder {
	b.sessions = reg
	return b
}

// WithUserStore sets the account store. Without one the account endpoints answer 404.
func (b *Builder) WithUserStore(store user.Store) *Builder {
	b.users = store
	return b
}

// Build constructs the Server and its routes.
func (b *Builder) Build() *Server {
	s := &Server{
		cfg:        b.cfg,
		logger:     b.logger,
		sessions:   b.sessions,
		dispatcher: render.NewDispatcher(b.sessions),
		users:      b.users,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(accessLog(s.logger.Named("http")))
	r.Use(middleware.Recoverer)

	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleNotFound)

	r.Get("/health", s.handleHealth)
	r.Get("/settings/list", s.handleSettingsList)

	r.Post("/process", s.handleProcess)
	r.Post("/render", s.handleRender)

	if s.users != nil {
		r.Post("/login", s.handleLogin)
		r.Post("/register", s.handleRegister)
		r.Get("/users/{userID}", s.handleGetUser)
		r.Put("/users/{userID}", s.handleUpdateUser)
	}

	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Sessions returns the session registry backing the server.
func (s *Server) Sessions() *session.Registry {
	return s.sessions
}

// Run listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          s.logger.StandardLogger(&hclog.StandardLoggerOptions{InferLevels: true}),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "sessions", s.sessions.Len())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
