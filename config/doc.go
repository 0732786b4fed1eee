// Copyright (c) OpenSift Authors.
// Licensed under the MIT License.

/*
Package config provides OpenSift's configuration loading.

Config is loaded once at startup and never mutated afterward (no hot
reload — the service is stateless and short-lived per deployment).
Precedence is defaults -> YAML file -> environment variables, applied by
Loader, a small builder wrapping a reflection-based env overlay keyed off
each field's `env` struct tag (OPENSIFT_SERVER_PORT, OPENSIFT_AI_API_KEY,
and so on).

The tree covers five concerns: Server (HTTP listener), AI (the LLM
gateway endpoint and models), Search (adapter registry and fan-out
width), Observability (log level/format plus optional OTLP export), and
Auth (an optional shared-secret/JWT gate on the /v1/* routes).
*/
package config
