// Copyright (c) OpenSift Authors.
// Licensed under the MIT License.

/*
Package models holds every request-scoped value type that flows through
the planner, search fan-out, verifier, classifier and engine stages.

None of these types are persisted: a value's lifetime is the HTTP request
that produced it. The only long-lived state in the process is the adapter
registry (package adapter), which these types never reference directly.
*/
package models
