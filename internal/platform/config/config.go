// Copyright (c) 2026 Tessera. All rights reserved.

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (resolver, stores) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Tessera API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Multitenancy settings. When disabled, every request resolves to the
	// sentinel tenant and DATABASE_URL alone is used.
	MultitenancyEnabled bool   `env:"MULTITENANCY_ENABLED" envDefault:"false"`
	BaseDomain          string `env:"BASE_DOMAIN"          envDefault:"tessera.app"`

	// TenantIDs lists the tenants whose partitions are bound at startup.
	// Each tenant requires a DATABASE_URL_<UPPERCASED_ID> variable.
	TenantIDs []string `env:"TENANT_IDS" envSeparator:","`

	// Relational Database (PostgreSQL). In multi-tenant mode this is unused;
	// in single-tenant mode it is the default partition.
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value store (Redis) for sessions and permission versions.
	RedisURL string `env:"REDIS_URL,required"`

	// TokenSecret signs tenant-bound tokens (email confirm, password reset).
	TokenSecret string `env:"TOKEN_SECRET,required"`

	// AppBaseURL is used to render confirmation/reset links in outbound mail.
	AppBaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:3000"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validateTenancy(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateTenancy rejects configurations the tenant registry cannot be built
// from, so misconfiguration halts startup instead of failing per-request.
func (c *Config) validateTenancy() error {
	if !c.MultitenancyEnabled {
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required when multitenancy is disabled")
		}
		return nil
	}

	if len(c.TenantIDs) == 0 {
		return fmt.Errorf("config: TENANT_IDS is required when multitenancy is enabled")
	}

	for _, id := range c.TenantIDs {
		if _, ok := c.PartitionDSN(id); !ok {
			return fmt.Errorf("config: missing DATABASE_URL_%s for tenant %q", strings.ToUpper(id), id)
		}
	}

	return nil
}

// PartitionDSN returns the connection string of a tenant's partition from
// the DATABASE_URL_<UPPERCASED_ID> environment variable.
func (c *Config) PartitionDSN(tenantID string) (string, bool) {
	return lookupEnv("DATABASE_URL_" + strings.ToUpper(strings.TrimSpace(tenantID)))
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// lookupEnv wraps os.LookupEnv and treats empty values as absent.
func lookupEnv(key string) (string, bool) {
	val, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(val) == "" {
		return "", false
	}
	return val, true
}
