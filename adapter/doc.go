// Copyright (c) OpenSift Authors.
// Licensed under the MIT License.

// Package adapter defines the Adapter interface every pluggable search
// backend (Wikipedia, Meilisearch, and others) implements, plus Registry,
// which tracks initialized instances and runs concurrent health sweeps.
package adapter
