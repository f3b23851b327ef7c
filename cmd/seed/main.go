// Command seed creates the bootstrap administrator from SEED_ADMIN_EMAIL,
// SEED_ADMIN_PASSWORD and SEED_ADMIN_NAME. It is idempotent.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/lakshyafoods/storefront/app"
	"github.com/lakshyafoods/storefront/auth"
	"github.com/lakshyafoods/storefront/config"
	"github.com/lakshyafoods/storefront/internal/observability"
	"github.com/lakshyafoods/storefront/models"
	"github.com/lakshyafoods/storefront/repositories"
	"go.uber.org/zap"
)

const seedBcryptCost = 10

// Seed outcomes
const (
	resultSkipped = "skipped"
	resultExists  = "exists"
	resultCreated = "created"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.New(ctx)
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Database.Driver == config.DriverMemory {
		return errors.New("seeding requires DB_DRIVER=postgres")
	}

	deps, err := app.NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close(ctx)

	_, err = seedAdmin(ctx, deps.Repositories.Users, cfg.Seed, logger)
	return err
}

// seedAdmin creates the administrator unless the credentials are missing or
// the email is already registered
func seedAdmin(ctx context.Context, users repositories.UserRepository, seed config.SeedConfig, logger *zap.Logger) (string, error) {
	email := strings.TrimSpace(seed.AdminEmail)
	if email == "" || seed.AdminPassword == "" {
		logger.Info("skipping admin seed, SEED_ADMIN_EMAIL or SEED_ADMIN_PASSWORD not set")
		return resultSkipped, nil
	}

	_, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		logger.Info("admin user already exists, skipping", zap.String("email", email))
		return resultExists, nil
	case !errors.Is(err, repositories.ErrNotFound):
		return "", fmt.Errorf("failed to look up admin: %w", err)
	}

	hash, err := auth.HashPassword(seed.AdminPassword, seedBcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash admin password: %w", err)
	}

	name := strings.TrimSpace(seed.AdminName)
	if name == "" {
		name = "Administrator"
	}

	if err := users.Create(ctx, models.NewUser(name, email, hash, models.RoleAdmin)); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return resultExists, nil
		}
		return "", fmt.Errorf("failed to create admin: %w", err)
	}

	logger.Info("admin user created", zap.String("email", email))
	return resultCreated, nil
}
