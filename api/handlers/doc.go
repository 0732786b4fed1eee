// Copyright (c) OpenSift Authors.
// Licensed under the MIT License.

/*
Package handlers implements the OpenSift HTTP API's request handlers.

# Overview

handlers implements every OpenSift HTTP endpoint: planning, search
(complete and SSE streaming), batch search, and health checks, plus the
unified response/error envelope they all share. Every Handler follows
the standard net/http interface, documented via Swagger annotations.

# Core types

  - PlanHandler      — POST /v1/plan
  - SearchHandler     — POST /v1/search, complete or SSE streaming
  - BatchHandler      — POST /v1/search/batch
  - HealthHandler     — process liveness/readiness (/health, /healthz, /ready)
  - Response          — unified JSON envelope (success + data + error + timestamp)
  - ErrorInfo         — structured error (code, message, retryable)
  - ResponseWriter    — wraps http.ResponseWriter to capture the status code
  - HealthCheck       — pluggable liveness probe (adapter reachability, etc.)

# Capabilities

  - Unified response shape via WriteSuccess / WriteError / WriteJSON
  - Request validation: DecodeJSONBody (1 MB cap + strict mode), ValidateContentType
  - ErrorCode → HTTP status mapping (4xx/5xx)
  - SSE streaming: SearchHandler.HandleSearch switches to text/event-stream
    when the request's options.stream is true
  - Service and per-adapter health: GET /v1/health, GET /v1/health/adapters
*/
package handlers
