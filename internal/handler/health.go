package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// HealthChecker is a backend that can be pinged.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Dependency names a checked backend.
type Dependency struct {
	Name    string
	Checker HealthChecker
}

// Readiness check results.
const (
	checkOK            = "ok"
	checkUnavailable   = "unavailable"
	checkNotConfigured = "not configured"
)

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	deps    []Dependency
	timeout time.Duration
	logger  *slog.Logger
}

// NewHealthHandler creates a HealthHandler. A dependency with a nil Checker
// is reported as not configured and does not fail readiness.
func NewHealthHandler(logger *slog.Logger, deps ...Dependency) *HealthHandler {
	return &HealthHandler{
		deps:    deps,
		timeout: 2 * time.Second,
		logger:  logger,
	}
}

// HealthResponse is the probe body.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz reports that the process is serving. GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: checkOK})
}

// Readyz pings every dependency in parallel and answers 503 if any fails.
// Failure details are logged, not returned. GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	results := make([]string, len(h.deps))
	var wg sync.WaitGroup
	for i, dep := range h.deps {
		if dep.Checker == nil {
			results[i] = checkNotConfigured
			continue
		}
		wg.Add(1)
		go func(i int, dep Dependency) {
			defer wg.Done()
			if err := dep.Checker.Ping(ctx); err != nil {
				h.logger.Warn("readiness_check_failed",
					slog.String("dependency", dep.Name),
					slog.String("error", err.Error()),
				)
				results[i] = checkUnavailable
				return
			}
			results[i] = checkOK
		}(i, dep)
	}
	wg.Wait()

	resp := HealthResponse{Status: checkOK, Checks: make(map[string]string, len(h.deps))}
	status := http.StatusOK
	for i, dep := range h.deps {
		resp.Checks[dep.Name] = results[i]
		if results[i] == checkUnavailable {
			resp.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, status, resp)
}
