// Package main wires OpenSift's components into a runnable HTTP server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/atominnolab/opensift/adapter"
	"github.com/atominnolab/opensift/adapter/meilisearch"
	"github.com/atominnolab/opensift/adapter/wikipedia"
	"github.com/atominnolab/opensift/api/handlers"
	"github.com/atominnolab/opensift/config"
	"github.com/atominnolab/opensift/engine"
	"github.com/atominnolab/opensift/internal/metrics"
	"github.com/atominnolab/opensift/internal/server"
	"github.com/atominnolab/opensift/llm"
	"github.com/atominnolab/opensift/planner"
	"github.com/atominnolab/opensift/verifier"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server is OpenSift's main process: search engine plus HTTP and metrics
// listeners.
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	httpManager    *server.Manager
	metricsManager *server.Manager

	healthHandler *handlers.HealthHandler
	planHandler   *handlers.PlanHandler
	searchHandler *handlers.SearchHandler
	batchHandler  *handlers.BatchHandler

	registry         *adapter.Registry
	metricsCollector *metrics.Collector

	wg sync.WaitGroup
}

// NewServer creates a new Server instance from its loaded configuration.
func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{cfg: cfg, logger: logger}
}

// Start wires the search engine, handlers, and listeners, then starts the
// HTTP and metrics servers non-blocking.
func (s *Server) Start() error {
	s.metricsCollector = metrics.NewCollector(s.cfg.Observability.MetricsNamespace, s.logger)

	if err := s.initEngine(); err != nil {
		return fmt.Errorf("failed to init engine: %w", err)
	}

	if err := s.initHandlers(); err != nil {
		return fmt.Errorf("failed to init handlers: %w", err)
	}

	if err := s.startHTTPServer(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	if err := s.startMetricsServer(); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}

	s.logger.Info("all servers started",
		zap.Int("http_port", s.cfg.Server.Port),
		zap.Int("metrics_port", s.cfg.Server.MetricsPort),
		zap.Strings("active_adapters", s.registry.ActiveAdapters()),
	)

	return nil
}

// initEngine builds the LLM gateway, adapter registry, planner, verifier,
// and search engine from configuration.
func (s *Server) initEngine() error {
	gateway := llm.NewGateway(s.cfg.AI, s.metricsCollector, s.logger)

	s.registry = adapter.NewRegistry(s.logger)
	for name, entry := range s.cfg.Search.Adapters {
		if !entry.Enabled {
			continue
		}
		switch name {
		case "wikipedia":
			wikiCfg := wikipedia.DefaultConfig()
			if entry.Extra["language"] != "" {
				wikiCfg.Language = entry.Extra["language"]
			}
			s.registry.Register(wikipedia.New(wikiCfg, s.logger))
		case "meilisearch":
			meiliCfg := meilisearch.DefaultConfig()
			if len(entry.Hosts) > 0 {
				meiliCfg.BaseURL = entry.Hosts[0]
			}
			if entry.IndexPattern != "" {
				meiliCfg.Index = entry.IndexPattern
			}
			meiliCfg.APIKey = entry.APIKey
			s.registry.Register(meilisearch.New(meiliCfg, s.logger))
		default:
			s.logger.Warn("unknown adapter in configuration, skipping", zap.String("name", name))
		}
	}

	p := planner.New(s.cfg.AI, gateway, s.logger)
	v := verifier.New(verifier.Config{
		Model:          s.cfg.AI.ModelVerifier,
		Temperature:    s.cfg.AI.Temperature,
		MaxTokens:      s.cfg.AI.MaxTokens,
		MaxRetries:     s.cfg.AI.MaxRetries,
		MaxConcurrency: s.cfg.Search.MaxConcurrentQueries,
	}, gateway, s.logger)

	eng := engine.New(p, v, s.registry, s.logger)
	s.planHandler = handlers.NewPlanHandler(eng, s.logger)
	s.searchHandler = handlers.NewSearchHandler(eng, s.logger)
	s.batchHandler = handlers.NewBatchHandler(eng, s.logger)

	return nil
}

// initHandlers builds the health handler and registers adapter checks.
func (s *Server) initHandlers() error {
	s.healthHandler = handlers.NewHealthHandler(s.logger)
	for _, name := range s.registry.ActiveAdapters() {
		a, ok := s.registry.Get(name)
		if !ok {
			continue
		}
		s.healthHandler.RegisterCheck(handlers.NewAdapterHealthCheck(a))
	}
	s.logger.Info("handlers initialized")
	return nil
}

// startHTTPServer builds the route table, wraps it in the middleware
// chain, and starts listening.
func (s *Server) startHTTPServer() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.healthHandler.HandleHealth)
	mux.HandleFunc("/healthz", s.healthHandler.HandleHealthz)
	mux.HandleFunc("/ready", s.healthHandler.HandleReady)
	mux.HandleFunc("/readyz", s.healthHandler.HandleReady)
	mux.HandleFunc("/version", s.healthHandler.HandleVersion(Version, BuildTime, GitCommit))

	mux.HandleFunc("/v1/plan", s.planHandler.HandlePlan)
	mux.HandleFunc("/v1/search", s.searchHandler.HandleSearch)
	mux.HandleFunc("/v1/search/batch", s.batchHandler.HandleBatchSearch)
	mux.HandleFunc("/v1/health", handlers.HandleServiceHealth(Version, s.cfg.Search.DefaultAdapter, s.registry))
	mux.HandleFunc("/v1/health/adapters", handlers.HandleAdapterHealth(s.registry))

	skipAuthPaths := []string{"/health", "/healthz", "/ready", "/readyz", "/version", "/metrics"}
	middlewares := []Middleware{
		Recovery(s.logger),
		RequestID(),
		SecurityHeaders(),
		RequestLogger(s.logger),
		MetricsMiddleware(s.metricsCollector),
		CORS(s.cfg.Server.CORSOrigins),
		RateLimiter(context.Background(), float64(s.cfg.Server.RateLimitRPS), s.cfg.Server.RateLimitBurst),
	}
	if s.cfg.Auth.Enabled {
		if s.cfg.Auth.JWTSecret != "" {
			middlewares = append(middlewares, JWTAuth(s.cfg.Auth.JWTSecret, skipAuthPaths, s.logger))
		} else {
			middlewares = append(middlewares, APIKeyAuth(s.cfg.Auth.APIKeys, skipAuthPaths))
		}
	}
	handler := Chain(mux, middlewares...)

	serverConfig := server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.Port),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		IdleTimeout:     2 * s.cfg.Server.ReadTimeout,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}

	s.httpManager = server.NewManager(handler, serverConfig, s.logger)
	if err := s.httpManager.Start(); err != nil {
		return err
	}

	s.logger.Info("HTTP server started", zap.Int("port", s.cfg.Server.Port))
	return nil
}

// startMetricsServer starts the Prometheus scrape endpoint.
func (s *Server) startMetricsServer() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	serverConfig := server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.MetricsPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}

	s.metricsManager = server.NewManager(mux, serverConfig, s.logger)
	if err := s.metricsManager.Start(); err != nil {
		return err
	}

	s.logger.Info("metrics server started", zap.Int("port", s.cfg.Server.MetricsPort))
	return nil
}

// WaitForShutdown blocks until an interrupt signal arrives, then runs
// Shutdown.
func (s *Server) WaitForShutdown() {
	if s.httpManager != nil {
		s.httpManager.WaitForShutdown()
	}
	s.Shutdown()
}

// Shutdown gracefully stops the HTTP and metrics servers.
func (s *Server) Shutdown() {
	s.logger.Info("starting graceful shutdown")

	ctx := context.Background()

	if s.httpManager != nil {
		if err := s.httpManager.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP server shutdown error", zap.Error(err))
		}
	}
	if s.metricsManager != nil {
		if err := s.metricsManager.Shutdown(ctx); err != nil {
			s.logger.Error("metrics server shutdown error", zap.Error(err))
		}
	}

	s.wg.Wait()
	s.logger.Info("graceful shutdown completed")
}
