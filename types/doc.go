// Copyright (c) OpenSift Authors.
// Licensed under the MIT License.

/*
Package types provides the structured error taxonomy shared across
OpenSift's packages (llm, adapter, engine, api).

Error is the single typed-error shape used from the gateway down to the
HTTP layer: a code drawn from a closed set (LLMAuth, LLMForbidden,
LLMNotFound, LLMRateLimited, LLMUnavailable, LLMEmpty, LLMBadJSON,
AdapterConfig, AdapterConnect, AdapterQuery, DocumentNotFound,
ValidationError, Internal), a message, an optional HTTP status, a
retryable flag, an optional provider/adapter name, and an optional
wrapped cause. Fluent With* builders let call sites attach context
without repeating struct literals.
*/
package types
