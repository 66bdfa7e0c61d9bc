// Copyright (c) 2026 Tessera. All rights reserved.

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.

# Security Pipeline

Every /api/v1 request passes tenant resolution first. Auth endpoints stay
reachable without a session (you cannot sign in while signed out); everything
else additionally passes session validation, which rejects sessions minted
under a different tenant.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tesserahq/tessera/internal/platform/config"
	"github.com/tesserahq/tessera/internal/platform/constants"
	"github.com/tesserahq/tessera/internal/platform/middleware"
	"github.com/tesserahq/tessera/internal/project"
	"github.com/tesserahq/tessera/internal/rbac"
	"github.com/tesserahq/tessera/internal/session"
	"github.com/tesserahq/tessera/internal/tenant"
	"github.com/tesserahq/tessera/internal/user"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// User handles account lifecycle and sign-in.
	User *user.Handler

	// Project handles the tenant-scoped project workspaces.
	Project *project.Handler

	// RBAC handles role and permission administration.
	RBAC *rbac.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(
	ctx context.Context,
	cfg *config.Config,
	log *slog.Logger,
	resolver *tenant.Resolver,
	sessions *session.Manager,
	h Handlers,
) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(ctx))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.CORS(cfg, cfg.BaseDomain))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration. These sit
	// outside the API prefix and never touch tenant resolution.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	r.Route("/api/v1", func(api chi.Router) {
		// Tenant resolution guards the entire API surface.
		api.Use(middleware.ResolveTenant(resolver))

		// Public group: auth flows and session introspection are
		// tenant-scoped but sessionless. Introspection must stay reachable
		// for anonymous callers so frontends can ask "who am I, if anyone"
		// without tripping the session guard.
		api.Group(func(public chi.Router) {
			public.Mount("/auth", h.User.PublicRoutes())
			public.Mount("/session", h.User.SessionRoutes())
		})

		// Authenticated group: everything else requires a session bound to
		// the tenant resolved above.
		api.Group(func(private chi.Router) {
			private.Use(middleware.RequireSession(sessions))

			private.Mount("/", h.User.Routes())
			private.Mount("/projects", h.Project.Routes())
			private.Mount("/admin", h.RBAC.Routes())
		})
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// ServeHTTP dispatches through the assembled route table, making the server
// usable as a plain [http.Handler] in tests.
func (s *Server) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	s.router.ServeHTTP(writer, request)
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
