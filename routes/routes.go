package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/lakshyafoods/storefront/app"
	"github.com/lakshyafoods/storefront/middleware"
	"github.com/lakshyafoods/storefront/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Path policy runs before any handler
	r.Use(deps.RouteGate.Handler)

	health := deps.HealthHandler
	r.Get("/healthz", health.HandleHealth)
	r.Get("/readyz", health.HandleReadiness)

	if deps.Config.Observability.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	authLimit := middleware.AuthRateLimit(deps.Config.Auth.RateLimit)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health.HandleHealth)
		r.Get("/version", health.HandleVersion)
		r.Get("/ping", health.HandlePing)

		r.Route("/auth", func(r chi.Router) {
			r.With(authLimit).Post("/signup", deps.UserHandler.HandleSignUp)
			r.With(authLimit).Post("/signin", deps.AuthHandler.HandleSignIn)
			r.Post("/signout", deps.AuthHandler.HandleSignOut)
			r.Get("/session", deps.AuthHandler.HandleSession)
			r.With(deps.AuthMiddleware.RequireAuth).Post("/refresh", deps.AuthHandler.HandleRefresh)
			r.Get("/google/login", deps.AuthHandler.HandleGoogleLogin)
			r.Get("/google/callback", deps.AuthHandler.HandleGoogleCallback)
		})

		r.Route("/user", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Get("/profile", deps.UserHandler.HandleGetProfile)
			r.Put("/profile", deps.UserHandler.HandleUpdateProfile)
			r.Put("/change-password", deps.UserHandler.HandleChangePassword)
		})

		r.With(authLimit).Post("/contact", deps.ContactHandler.HandleSubmit)

		r.Route("/admin", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAdmin)
			r.Get("/users", deps.AdminHandler.HandleListUsers)
			r.Put("/users", deps.AdminHandler.HandleUpdateUser)
			r.Get("/orders", deps.AdminHandler.HandleListOrders)
			r.Put("/orders", deps.AdminHandler.HandleUpdateOrder)
			r.Get("/dashboard", deps.AdminHandler.HandleDashboard)
			r.Get("/audit", deps.AdminHandler.HandleListAudit)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
	})

	return r
}
