package app

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/lakshyafoods/storefront/config"
	"github.com/lakshyafoods/storefront/repositories/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func TestNewDependencies(t *testing.T) {
	t.Run("memory driver wires every component", func(t *testing.T) {
		ctx := context.Background()
		cfg := testConfig(t)
		cfg.Database.Driver = config.DriverMemory

		deps, err := NewDependencies(ctx, cfg, zaptest.NewLogger(t))
		require.NoError(t, err)
		require.NotNil(t, deps)

		assert.Nil(t, deps.DB)
		assert.Nil(t, deps.RepoFactory)
		require.NotNil(t, deps.Repositories)
		assert.NotNil(t, deps.Repositories.Users)
		assert.NotNil(t, deps.Repositories.Accounts)
		assert.NotNil(t, deps.Repositories.Orders)
		assert.NotNil(t, deps.Repositories.Inquiries)
		assert.NotNil(t, deps.Repositories.AuditLogs)
		assert.NotNil(t, deps.TxManager)

		assert.NotNil(t, deps.Users)
		assert.NotNil(t, deps.Orders)
		assert.NotNil(t, deps.Dashboard)
		assert.NotNil(t, deps.Inquiries)

		assert.NotNil(t, deps.Policy)
		assert.NotNil(t, deps.Sessions)
		assert.NotNil(t, deps.AuthHandler)
		assert.NotNil(t, deps.AuthMiddleware)
		assert.NotNil(t, deps.RouteGate)

		assert.NotNil(t, deps.HealthHandler)
		assert.NotNil(t, deps.UserHandler)
		assert.NotNil(t, deps.AdminHandler)
		assert.NotNil(t, deps.ContactHandler)

		assert.NoError(t, deps.Close(ctx))
	})

	t.Run("google enabled", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Database.Driver = config.DriverMemory
		cfg.Google.ClientID = "client-id"
		cfg.Google.ClientSecret = "client-secret"

		deps, err := NewDependencies(context.Background(), cfg, zap.NewNop())
		require.NoError(t, err)
		assert.NotNil(t, deps.AuthHandler)
	})

	t.Run("postgres with schema", func(t *testing.T) {
		ctx := context.Background()
		cfg := testConfig(t)
		cfg.Database.AutoMigrate = true

		if !isDatabaseAvailable(t, cfg) {
			t.Skip("database not available")
		}

		deps, err := NewDependencies(ctx, cfg, zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.NotNil(t, deps.DB)
		assert.NotNil(t, deps.RepoFactory)
		assert.NoError(t, deps.DB.HealthCheck(ctx))
		assert.NoError(t, deps.Close(ctx))
	})

	t.Run("database connection failure", func(t *testing.T) {
		ctx := context.Background()
		cfg := testConfig(t)
		cfg.Database.Host = "invalid-host-that-does-not-exist"

		deps, err := NewDependencies(ctx, cfg, zaptest.NewLogger(t))
		assert.Error(t, err)
		assert.Nil(t, deps)
		assert.Contains(t, err.Error(), "failed to initialize database")
	})
}

// Test helpers

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Environment: "test",
		Server: config.ServerConfig{
			Host:            "localhost",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: config.DatabaseConfig{
			Driver:          config.DriverPostgres,
			Host:            getEnvOrDefault("DB_HOST", "localhost"),
			Port:            5432,
			User:            getEnvOrDefault("DB_USER", "lakshya"),
			Password:        getEnvOrDefault("DB_PASSWORD", "lakshya"),
			Database:        getEnvOrDefault("DB_NAME", "lakshya_test"),
			SSLMode:         "disable",
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Auth: config.AuthConfig{
			Secret:     "test-secret",
			SessionTTL: time.Hour,
			CookieName: "session",
			SignInURL:  "/auth/signin",
			BcryptCost: 4,
			RateLimit:  10,
		},
		Observability: config.ObservabilityConfig{
			LogLevel:  "debug",
			LogFormat: "json",
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func isDatabaseAvailable(t *testing.T, cfg *config.Config) bool {
	t.Helper()
	factory, err := postgres.NewRepositoryFactory(cfg, zap.NewNop())
	if err != nil {
		return false
	}
	defer factory.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	return factory.GetDB().PingContext(ctx) == nil
}
