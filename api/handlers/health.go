package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/atominnolab/opensift/adapter"
	"go.uber.org/zap"
)

// HealthHandler serves the process-level liveness/readiness endpoints.
type HealthHandler struct {
	logger *zap.Logger
	checks []HealthCheck
	mu     sync.RWMutex
}

// HealthCheck is a pluggable liveness probe registered against HandleReady.
type HealthCheck interface {
	Name() string
	Check(ctx context.Context) error
}

// ServiceHealthResponse is the body of /health, /healthz and /ready.
type ServiceHealthResponse struct {
	Status    string                 `json:"status"` // "healthy", "degraded", "unhealthy"
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version,omitempty"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is one named check's outcome within ServiceHealthResponse.
type CheckResult struct {
	Status  string `json:"status"` // "pass", "fail"
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// NewHealthHandler builds a HealthHandler with no registered checks.
func NewHealthHandler(logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		logger: logger,
		checks: make([]HealthCheck, 0),
	}
}

// RegisterCheck adds check to the set HandleReady evaluates.
func (h *HealthHandler) RegisterCheck(check HealthCheck) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks = append(h.checks, check)
}

// HandleHealth answers a plain liveness probe.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := ServiceHealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
	}

	WriteJSON(w, http.StatusOK, status)
}

// HandleHealthz is the Kubernetes-style liveness probe alias of HandleHealth.
func (h *HealthHandler) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	status := ServiceHealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
	}

	WriteJSON(w, http.StatusOK, status)
}

// HandleReady runs every registered check and reports unhealthy (503) if
// any fails.
func (h *HealthHandler) HandleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	h.mu.RLock()
	checks := make([]HealthCheck, len(h.checks))
	copy(checks, h.checks)
	h.mu.RUnlock()

	status := ServiceHealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Checks:    make(map[string]CheckResult),
	}

	allHealthy := true
	for _, check := range checks {
		start := time.Now()
		err := check.Check(ctx)
		latency := time.Since(start)

		result := CheckResult{
			Status:  "pass",
			Latency: latency.String(),
		}

		if err != nil {
			result.Status = "fail"
			result.Message = err.Error()
			allHealthy = false

			h.logger.Warn("health check failed",
				zap.String("check", check.Name()),
				zap.Error(err),
				zap.Duration("latency", latency),
			)
		}

		status.Checks[check.Name()] = result
	}

	if !allHealthy {
		status.Status = "unhealthy"
		WriteJSON(w, http.StatusServiceUnavailable, status)
		return
	}

	WriteJSON(w, http.StatusOK, status)
}

// HandleVersion reports build metadata.
func (h *HealthHandler) HandleVersion(version, buildTime, gitCommit string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info := map[string]string{
			"version":    version,
			"build_time": buildTime,
			"git_commit": gitCommit,
		}

		WriteSuccess(w, info)
	}
}

// AdapterHealthCheck adapts one registered search adapter's HealthCheck
// into the generic HealthCheck interface HandleReady consumes.
type AdapterHealthCheck struct {
	name    string
	adapter adapter.Adapter
}

// NewAdapterHealthCheck wraps a into a HealthCheck keyed by its own name.
func NewAdapterHealthCheck(a adapter.Adapter) *AdapterHealthCheck {
	return &AdapterHealthCheck{name: a.Name(), adapter: a}
}

func (c *AdapterHealthCheck) Name() string { return c.name }

func (c *AdapterHealthCheck) Check(ctx context.Context) error {
	health, err := c.adapter.HealthCheck(ctx)
	if err != nil {
		return err
	}
	if health.Status != adapter.StatusHealthy {
		return &adapterUnhealthyError{status: health.Status, message: health.Message}
	}
	return nil
}

type adapterUnhealthyError struct {
	status  string
	message string
}

func (e *adapterUnhealthyError) Error() string {
	if e.message != "" {
		return e.status + ": " + e.message
	}
	return e.status
}

// ServiceHealthInfo is the body of GET /v1/health: the overall service
// identity plus which adapters are configured and active.
type ServiceHealthInfo struct {
	Status         string   `json:"status"`
	Version        string   `json:"version"`
	Service        string   `json:"service"`
	DefaultAdapter string   `json:"default_adapter"`
	ActiveAdapters []string `json:"active_adapters"`
}

// HandleServiceHealth serves GET /v1/health: the service identity plus
// the adapter registry's active membership, independent of any adapter's
// actual reachability (use HandleAdapterHealth for that).
func HandleServiceHealth(version, defaultAdapter string, registry *adapter.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, ServiceHealthInfo{
			Status:         "healthy",
			Version:        version,
			Service:        "opensift",
			DefaultAdapter: defaultAdapter,
			ActiveAdapters: registry.ActiveAdapters(),
		})
	}
}

// AdapterHealthResponse is the body of GET /v1/health/adapters.
type AdapterHealthResponse struct {
	Status   string                    `json:"status"`
	Adapters map[string]adapter.Health `json:"adapters"`
}

// HandleAdapterHealth serves GET /v1/health/adapters: every registered
// adapter's live reachability, probed concurrently. Overall status is
// "healthy" only if every adapter reports healthy, "unhealthy" if every
// adapter does, and "degraded" otherwise.
func HandleAdapterHealth(registry *adapter.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results := registry.HealthCheckAll(r.Context())

		healthyCount, unhealthyCount := 0, 0
		for _, h := range results {
			switch h.Status {
			case adapter.StatusHealthy:
				healthyCount++
			case adapter.StatusUnhealthy:
				unhealthyCount++
			}
		}

		overall := "degraded"
		switch {
		case len(results) == 0:
			overall = "unhealthy"
		case healthyCount == len(results):
			overall = "healthy"
		case unhealthyCount == len(results):
			overall = "unhealthy"
		}

		WriteJSON(w, http.StatusOK, AdapterHealthResponse{
			Status:   overall,
			Adapters: results,
		})
	}
}
