// Package httpx is the HTTP client the trace collector speaks through:
// base URL resolution, default headers, request id propagation, a client-wide
// rate limiter, before/after hooks and an error type that keeps the status
// and a bounded copy of the response body.
//
// Requests are attempted once. Callers that want retries own that policy.
package httpx
