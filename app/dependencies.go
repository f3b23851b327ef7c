package app

import (
	"context"
	"fmt"

	"github.com/lakshyafoods/storefront/auth"
	"github.com/lakshyafoods/storefront/config"
	"github.com/lakshyafoods/storefront/handlers"
	"github.com/lakshyafoods/storefront/middleware"
	"github.com/lakshyafoods/storefront/repositories"
	"github.com/lakshyafoods/storefront/repositories/memory"
	"github.com/lakshyafoods/storefront/repositories/postgres"
	"github.com/lakshyafoods/storefront/services/audit"
	"github.com/lakshyafoods/storefront/services/dashboard"
	"github.com/lakshyafoods/storefront/services/inquiries"
	"github.com/lakshyafoods/storefront/services/orders"
	"github.com/lakshyafoods/storefront/services/users"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB // nil with the memory driver
	Logger *zap.Logger

	// Repository Factory (nil with the memory driver)
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Repositories *repositories.Repositories
	TxManager    repositories.TransactionManager

	// Services
	Audit     *audit.AuditService
	Users     *users.UserService
	Orders    *orders.OrderService
	Dashboard *dashboard.DashboardService
	Inquiries *inquiries.InquiryService

	// Auth
	Policy         *auth.Policy
	Sessions       *auth.SessionManager
	AuthHandler    *auth.Handler
	AuthMiddleware *middleware.AuthMiddleware
	RouteGate      *middleware.RouteGate

	// HTTP handlers
	HealthHandler  *handlers.HealthHandler
	UserHandler    *handlers.UserHandler
	AdminHandler   *handlers.AdminHandler
	ContactHandler *handlers.ContactHandler
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initStorage(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps.initServices(cfg)
	deps.initAuth(cfg)
	deps.initHandlers(cfg)

	logger.Info("all dependencies initialized successfully",
		zap.String("database_driver", cfg.Database.Driver),
		zap.Bool("google_sign_in", cfg.Google.Enabled()))
	return deps, nil
}

// initStorage opens PostgreSQL, or the in-memory store for local development
func (d *Dependencies) initStorage(ctx context.Context, cfg *config.Config) error {
	if cfg.Database.Driver == config.DriverMemory {
		d.Repositories = memory.NewStore().NewRepositories()
		d.TxManager = memory.NewTransactionManager()
		d.Logger.Warn("using in-memory storage, data is lost on restart")
		return nil
	}

	factory, err := postgres.NewRepositoryFactory(cfg, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}
	d.RepoFactory = factory
	d.DB = factory.GetDB()

	if cfg.Database.AutoMigrate {
		if err := factory.InitSchema(ctx); err != nil {
			_ = factory.Close()
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	d.Repositories = factory.NewRepositories()
	d.TxManager = factory.GetTransactionManager()
	d.Logger.Info("repositories initialized")
	return nil
}

func (d *Dependencies) initServices(cfg *config.Config) {
	repos := d.Repositories
	d.Audit = audit.NewAuditService(repos.AuditLogs, d.Logger)
	d.Users = users.NewUserService(repos.Users, repos.Accounts, d.Audit, d.TxManager, cfg.Auth.BcryptCost, d.Logger)
	d.Orders = orders.NewOrderService(repos.Orders, d.Audit, d.TxManager, d.Logger)
	d.Dashboard = dashboard.NewDashboardService(repos.Users, repos.Orders, repos.Inquiries, d.Logger)
	d.Inquiries = inquiries.NewInquiryService(repos.Inquiries, d.Logger)
}

func (d *Dependencies) initAuth(cfg *config.Config) {
	d.Policy = auth.DefaultPolicy()
	d.Sessions = auth.NewSessionManager(cfg.Auth.Secret, cfg.Auth.SessionTTL, cfg.Auth.CookieName)

	var provider auth.IdentityProvider
	if cfg.Google.Enabled() {
		provider = auth.NewGoogleProvider(cfg.Google)
		d.Logger.Info("google sign-in enabled")
	}

	verifier := auth.NewCredentialVerifier(d.Repositories.Users, d.Logger)
	d.AuthHandler = auth.NewHandler(cfg, d.Sessions, verifier, provider, d.Users, d.Logger)
	d.AuthMiddleware = middleware.NewAuthMiddleware(d.Sessions, d.Logger)
	d.RouteGate = middleware.NewRouteGate(d.Policy, d.Sessions, cfg.Auth.SignInURL, d.Logger)
}

func (d *Dependencies) initHandlers(cfg *config.Config) {
	var pinger handlers.Pinger
	if d.DB != nil {
		pinger = d.DB
	}
	d.HealthHandler = handlers.NewHealthHandler(pinger, cfg.IsProduction(), d.Logger)
	d.UserHandler = handlers.NewUserHandler(d.Users, d.Logger)
	d.AdminHandler = handlers.NewAdminHandler(d.Users, d.Orders, d.Dashboard, d.Audit, d.Logger)
	d.ContactHandler = handlers.NewContactHandler(d.Inquiries, d.Logger)
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		d.Logger.Info("database connection closed")
	}

	_ = d.Logger.Sync()
	return nil
}
