// Copyright (c) 2026 Tessera. All rights reserved.

// Command api is the entry point for the Tessera HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect one PostgreSQL pool per tenant partition.
//  4. Connect to Redis.
//  5. Run database migrations on every partition (idempotent).
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tesserahq/tessera/internal/api"
	"github.com/tesserahq/tessera/internal/platform/config"
	"github.com/tesserahq/tessera/internal/platform/constants"
	"github.com/tesserahq/tessera/internal/platform/mailer"
	"github.com/tesserahq/tessera/internal/platform/migration"
	pgstore "github.com/tesserahq/tessera/internal/platform/postgres"
	redisstore "github.com/tesserahq/tessera/internal/platform/redis"
	"github.com/tesserahq/tessera/internal/project"
	"github.com/tesserahq/tessera/internal/rbac"
	"github.com/tesserahq/tessera/internal/session"
	"github.com/tesserahq/tessera/internal/tenant"
	"github.com/tesserahq/tessera/internal/token"
	"github.com/tesserahq/tessera/internal/user"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log := rawLog.With(slog.String("app", "tessera"))
	slog.SetDefault(log)

	log.Info("[Tessera] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "tessera"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Bool("multitenancy", cfg.MultitenancyEnabled),
	)

	// Root context for startup. A 30s deadline surfaces misconfiguration
	// quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. Partition Registry ─────────────────────────────────────────────
	registry, err := buildRegistry(startupCtx, cfg, log)
	must(log, err, "build partition registry")
	defer func() {
		log.Info("closing partition pools")
		registry.Each(func(key string, pool *pgxpool.Pool) {
			pool.Close()
		})
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Security Core ──────────────────────────────────────────────────
	resolver := tenant.NewResolver(tenant.Mode{
		MultitenancyEnabled: cfg.MultitenancyEnabled,
		BaseDomain:          cfg.BaseDomain,
		Development:         cfg.IsDevelopment(),
	}, registry)

	sessions := session.NewManager(session.NewRedisStore(rdb), cfg.IsProduction())

	issuer, err := token.NewIssuer(cfg.TokenSecret, constants.TokenIssuer)
	must(log, err, "initialize token issuer")
	ledger := token.NewRedisLedger(rdb)

	// ── 6. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckPartitions: func() error {
			var unhealthy error
			registry.Each(func(key string, pool *pgxpool.Pool) {
				if err := pgstore.Ping(context.Background(), pool); err != nil && unhealthy == nil {
					unhealthy = fmt.Errorf("partition %s: %w", key, err)
				}
			})
			return unhealthy
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	rbacService := rbac.NewService(rbac.NewPostgresStore(), rbac.NewRedisVersionStore(rdb), sessions)
	rbacHandler := rbac.NewHandler(rbacService)

	userService := user.NewService(
		user.NewPostgresStore(),
		sessions,
		rbacService,
		issuer,
		ledger,
		mailer.NewLogMailer(log),
		cfg.AppBaseURL,
	)
	userHandler := user.NewHandler(userService)

	projectService := project.NewService(project.NewPostgresStore())
	projectHandler := project.NewHandler(projectService, rbacService)

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		User:      userHandler,
		Project:   projectHandler,
		RBAC:      rbacHandler,
	}

	server := api.NewServer(context.Background(), cfg, log, resolver, sessions, handlers)

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// buildRegistry connects and migrates every configured tenant partition.
//
// # Modes
//
// Single-tenant: DATABASE_URL becomes the sentinel partition under key "DB".
// Multi-tenant: each id in TENANT_IDS is bound from DATABASE_URL_<UPPER>,
// keyed "DB_<UPPER>". Migration runs per partition so every tenant database
// carries the same schema version before traffic is served.
func buildRegistry(ctx context.Context, cfg *config.Config, log *slog.Logger) (*tenant.Registry, error) {
	registry := tenant.NewRegistry()

	if !cfg.MultitenancyEnabled {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("single-tenant mode requires DATABASE_URL")
		}

		if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
			return nil, err
		}

		pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, err
		}

		registry.Register(constants.DefaultTenantID, pool)
		log.Info("partition_registered", slog.String("key", constants.PartitionKeyDefault))
		return registry, nil
	}

	if len(cfg.TenantIDs) == 0 {
		return nil, fmt.Errorf("multi-tenant mode requires TENANT_IDS")
	}

	for _, raw := range cfg.TenantIDs {
		tenantID := strings.ToLower(strings.TrimSpace(raw))
		if tenantID == "" {
			continue
		}

		dsn, ok := cfg.PartitionDSN(tenantID)
		if !ok {
			return nil, fmt.Errorf("missing partition DSN for tenant %q (expected DATABASE_URL_%s)", tenantID, strings.ToUpper(tenantID))
		}

		if err := migration.RunUp(dsn, cfg.MigrationPath, log); err != nil {
			return nil, fmt.Errorf("migrate partition for tenant %q: %w", tenantID, err)
		}

		pool, err := pgstore.NewPool(ctx, dsn, log)
		if err != nil {
			return nil, fmt.Errorf("connect partition for tenant %q: %w", tenantID, err)
		}

		registry.Register(tenantID, pool)
		log.Info("partition_registered", slog.String("key", tenant.PartitionKey(tenantID)))
	}

	return registry, nil
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
