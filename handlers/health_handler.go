package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/lakshyafoods/storefront/utils"
	"go.uber.org/zap"
)

const (
	// AppName is reported by the version endpoint
	AppName = "lakshya-foods"
	// AppVersion is reported by the version endpoint
	AppVersion = "0.1.0"
)

// Pinger checks connectivity to the backing store
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string            `json:"status"`
	Uptime     float64           `json:"uptime"`
	Timestamp  string            `json:"timestamp"`
	DurationMs int64             `json:"durationMs"`
	Env        HealthEnv         `json:"env"`
	Checks     map[string]string `json:"checks,omitempty"`
}

// HealthEnv describes the runtime
type HealthEnv struct {
	Runtime string `json:"runtime"`
	Prod    bool   `json:"prod"`
}

// VersionResponse is the body of GET /api/version
type VersionResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	db         Pinger // nil with the memory driver
	production bool
	startedAt  time.Time
	logger     *zap.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger, production bool, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:         db,
		production: production,
		startedAt:  time.Now(),
		logger:     logger,
	}
}

// HandleHealth handles GET /healthz and /api/health.
// Always 200; a failing database is reported in checks.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	checks := map[string]string{"database": h.checkDatabase(r.Context())}

	_ = utils.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:     "ok",
		Uptime:     time.Since(h.startedAt).Seconds(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		DurationMs: time.Since(start).Milliseconds(),
		Env: HealthEnv{
			Runtime: runtime.Version(),
			Prod:    h.production,
		},
		Checks: checks,
	})
}

// HandleReadiness handles GET /readyz
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	database := h.checkDatabase(ctx)
	status, code := "ready", http.StatusOK
	if database == "unhealthy" {
		status, code = "not_ready", http.StatusServiceUnavailable
	}

	if err := utils.WriteJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": map[string]string{"database": database},
	}); err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}

// HandleVersion handles GET /api/version
func (h *HealthHandler) HandleVersion(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteJSON(w, http.StatusOK, VersionResponse{
		Name:      AppName,
		Version:   AppVersion,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HandlePing handles GET /api/ping
func (h *HealthHandler) HandlePing(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ok":    true,
		"layer": "api",
		"ts":    time.Now().UnixMilli(),
	})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) string {
	if h.db == nil {
		return "memory"
	}
	if err := h.db.HealthCheck(ctx); err != nil {
		h.logger.Warn("database health check failed", zap.Error(err))
		return "unhealthy"
	}
	return "healthy"
}
