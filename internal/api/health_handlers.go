package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/zubeidhendricks/africhain/internal/middleware"
)

// HealthChecker defines the interface for components that can be health checked.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandlers provides health and readiness check endpoints for Kubernetes probes.
type HealthHandlers struct {
	ledgerChecker HealthChecker
	dbChecker     HealthChecker
	redisChecker  HealthChecker
}

// HealthHandlersConfig configures the health check handlers. All checkers are
// optional; a nil checker reports "ok" (the dependency is not configured).
type HealthHandlersConfig struct {
	LedgerChecker HealthChecker
	DBChecker     HealthChecker
	RedisChecker  HealthChecker
}

// NewHealthHandlers creates a new health check handler.
func NewHealthHandlers(config HealthHandlersConfig) *HealthHandlers {
	return &HealthHandlers{
		ledgerChecker: config.LedgerChecker,
		dbChecker:     config.DBChecker,
		redisChecker:  config.RedisChecker,
	}
}

// HealthResponse represents the JSON response for health checks.
type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp string            `json:"timestamp"`
}

// Health handles GET /health (liveness probe).
// Returns 200 if the application is running and can serve requests.
func (h *HealthHandlers) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	// Liveness check is simple - if we can respond, we're alive
	response := HealthResponse{
		Status:    "healthy",
		Checks:    map[string]string{"runtime": "ok"},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	WriteJSON(w, r.Context(), http.StatusOK, response)
}

// Ready handles GET /ready (readiness probe).
// Returns 200 if the application is ready to serve traffic.
// Checks external dependencies and returns 503 if any critical service is unavailable.
func (h *HealthHandlers) Ready(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	healthy := true

	run := func(name string, checker HealthChecker) {
		if checker == nil {
			// Not configured (in-memory mode), nothing to probe.
			checks[name] = "ok"
			return
		}
		if err := checker.HealthCheck(ctx); err != nil {
			checks[name] = "error"
			healthy = false
			slog.WarnContext(ctx, name+" health check failed", "error", err)
		} else {
			checks[name] = "ok"
		}
	}

	run("database", h.dbChecker)
	run("redis", h.redisChecker)
	run("ledger", h.ledgerChecker)

	response := HealthResponse{
		Status:    "ready",
		Checks:    checks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	statusCode := http.StatusOK
	if !healthy {
		response.Status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	WriteJSON(w, r.Context(), statusCode, response)
}
