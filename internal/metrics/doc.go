// Copyright (c) OpenSift Authors.
// Licensed under the MIT License.

/*
Package metrics provides the Prometheus instrumentation for OpenSift's
HTTP surface and its search/verify/classify pipeline.

# Overview

Collector registers every metric through promauto at construction time,
so callers never manage a Registry by hand. Metrics are namespaced by
config.ObservabilityConfig.MetricsNamespace and labeled for per-adapter,
per-role (planner/verifier) and per-classification breakdowns.

# Groups

  - HTTP: request count, duration, request/response size, status class
    (2xx/3xx/4xx/5xx).
  - LLM gateway: request count/duration/tokens by role and model, plus
    JSON-repair outcome counts.
  - Search fan-out: per-adapter query count/duration/result count and
    adapter health gauges.
  - Verification: per-criterion assessment counts, per-document
    duration, and fallback-to-heuristic counts.
  - Classification: final classification counts (perfect/partial/reject).
*/
package metrics
