// Copyright (c) OpenSift Authors.
// Licensed under the MIT License.

// Package api provides OpenAPI/Swagger documentation and the canonical
// response envelope for the OpenSift HTTP API.
//
// # API Overview
//
// OpenSift exposes an AI-augmented search funnel over HTTP:
//   - POST /v1/plan          — generate search queries and screening criteria
//   - POST /v1/search        — run the full funnel (complete body or SSE stream)
//   - POST /v1/search/batch  — run multiple queries concurrently
//   - GET  /v1/health            — service identity and active adapters
//   - GET  /v1/health/adapters   — per-adapter reachability
//
// # Authentication
//
// Authentication is off by default (auth.enabled). When it is enabled,
// requests carry a JWT as "Authorization: Bearer <token>" if auth.jwt_secret
// is set, and otherwise an API key in the X-API-Key header:
//
//	X-API-Key: your-api-key
//
// /health, /healthz, /ready, /readyz and /version never require it.
//
// # Base URL
//
// The default base URL for the API is:
//
//	http://localhost:8080
//
// # Generating Documentation
//
// The handlers carry swag annotations. The repository ships no generated
// OpenAPI file and the server serves no /swagger route; the files can be
// generated into api/ with:
//
//	swag init -g cmd/opensift/main.go -o api --parseDependency --parseInternal
package api
