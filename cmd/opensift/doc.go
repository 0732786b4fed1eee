// Copyright (c) OpenSift Authors.
// Licensed under the MIT License.

/*
Package main provides OpenSift's server entry point.

# Overview

cmd/opensift is the executable entry point for the search funnel: an
HTTP API, health checks, and Prometheus metrics, with no persisted
state of its own.

# Core types

  - Server      — wires the LLM gateway, adapter registry, planner,
    verifier and engine into HTTP and metrics listeners, and manages
    their graceful shutdown
  - Middleware  — the HTTP middleware signature func(http.Handler) http.Handler
  - responseWriter, metricsResponseWriter — wrap http.ResponseWriter to
    capture status code and response size

# Capabilities

  - Subcommands: serve, version, health
  - Middleware chain: Recovery, RequestID, SecurityHeaders, RequestLogger,
    MetricsMiddleware, CORS, RateLimiter (per-IP), and, only when auth is
    enabled, JWTAuth (Bearer token, when a JWT secret is set) or
    APIKeyAuth (X-API-Key)
  - Metrics server: separate port exposing /metrics (Prometheus)
  - Graceful shutdown: signal -> close HTTP -> close metrics -> wait
  - Build-time injection: Version, BuildTime, GitCommit via ldflags
*/
package main
