// Copyright (c) OpenSift Authors.
// Licensed under the MIT License.

// Package telemetry wraps OpenTelemetry SDK initialization, giving OpenSift
// a single TracerProvider/MeterProvider setup point. When telemetry is
// disabled, it falls back to the noop implementations and never dials out.
package telemetry
