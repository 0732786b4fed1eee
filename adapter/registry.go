package adapter

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Registry manages initialized Adapter instances keyed by name, in
// insertion order. Registration is a config/startup-time concern — the
// registry itself only tracks already-constructed, already-initialized
// adapters.
type Registry struct {
	mu        sync.RWMutex
	instances map[string]Adapter
	order     []string
	logger    *zap.Logger
}

// NewRegistry creates an empty adapter registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		instances: make(map[string]Adapter),
		logger:    logger.With(zap.String("component", "adapter_registry")),
	}
}

// Register adds an already-initialized adapter instance under its own
// Name(). Re-registering a name replaces the previous instance without
// shutting it down — callers own adapter lifecycle outside Register.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := a.Name()
	if _, exists := r.instances[name]; !exists {
		r.order = append(r.order, name)
	}
	r.instances[name] = a
	r.logger.Info("adapter registered", zap.String("adapter", name))
}

// Get returns the adapter registered under name.
func (r *Registry) Get(name string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.instances[name]
	return a, ok
}

// GetAdapters returns the adapters named, in the order requested. With an
// empty names slice, it returns every active adapter in registration
// order. Unknown names are silently skipped.
func (r *Registry) GetAdapters(names []string) []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(names) == 0 {
		out := make([]Adapter, 0, len(r.order))
		for _, name := range r.order {
			out = append(out, r.instances[name])
		}
		return out
	}

	out := make([]Adapter, 0, len(names))
	for _, name := range names {
		if a, ok := r.instances[name]; ok {
			out = append(out, a)
		}
	}
	return out
}

// ActiveAdapters lists registered adapter names in insertion order.
func (r *Registry) ActiveAdapters() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// HealthCheckAll runs every registered adapter's health probe concurrently.
// It never returns an error: a failing probe surfaces as an unhealthy
// entry for that adapter rather than aborting the sweep.
func (r *Registry) HealthCheckAll(ctx context.Context) map[string]Health {
	r.mu.RLock()
	names := append([]string(nil), r.order...)
	instances := make(map[string]Adapter, len(names))
	for _, name := range names {
		instances[name] = r.instances[name]
	}
	r.mu.RUnlock()

	results := make(map[string]Health, len(names))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, name := range names {
		wg.Add(1)
		go func(name string, a Adapter) {
			defer wg.Done()
			health, err := a.HealthCheck(ctx)
			if err != nil {
				health = Health{Status: StatusUnhealthy, Message: err.Error()}
			}
			mu.Lock()
			results[name] = health
			mu.Unlock()
		}(name, instances[name])
	}
	wg.Wait()

	return results
}

// ShutdownAll gracefully shuts down every registered adapter, logging
// individual failures rather than aborting the sweep, then clears the
// registry.
func (r *Registry) ShutdownAll(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range r.order {
		a := r.instances[name]
		if err := a.Shutdown(ctx); err != nil {
			r.logger.Warn("error shutting down adapter",
				zap.String("adapter", name), zap.Error(err))
			continue
		}
		r.logger.Info("adapter shut down", zap.String("adapter", name))
	}
	r.instances = make(map[string]Adapter)
	r.order = nil
}

// NowISO stamps the current time as the RFC3339 string adapters use for
// Health.LastCheck.
func NowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
