// Copyright (c) OpenSift Authors.
// Licensed under the MIT License.

/*
Package server provides HTTP/HTTPS server lifecycle management: non-blocking
startup, graceful shutdown, and OS signal handling.

# Overview

Manager wraps net/http.Server, unifying listen/serve/shutdown/error
propagation into one type. It supports both plain HTTP and TLS startup,
with built-in SIGINT/SIGTERM handling for production-grade graceful
shutdown.

# Core types

  - Manager: the HTTP server manager. Holds an http.Server, a net.Listener,
    and an async error channel, exposing Start/StartTLS/Shutdown/
    WaitForShutdown lifecycle methods.
  - Config: server configuration — listen address, read/write timeouts,
    idle timeout, max header size, and graceful-shutdown timeout.

# Capabilities

  - Non-blocking startup: Start/StartTLS run the server in a background
    goroutine; the caller's goroutine never blocks.
  - Graceful shutdown: Shutdown drains in-flight requests and releases
    connections within the configured timeout.
  - Signal handling: WaitForShutdown listens for SIGINT/SIGTERM and triggers
    graceful shutdown automatically on receipt.
  - Error propagation: Errors() returns the async error channel so callers
    can monitor server failures.
  - TLS support: StartTLS accepts a certificate and key file.
  - Status queries: IsRunning reports false once Shutdown has run and true
    otherwise, including before Start; Addr reports the configured listen
    address.
*/
package server
