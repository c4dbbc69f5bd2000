// Package server runs the aggregator's HTTP API on a Gin engine.
//
// Middleware from server/middleware wraps the whole engine at the
// net/http level, outermost first:
//
//   - Recovery: panics become a 500 AppError body and an error log
//   - RequestID: X-Request-Id propagation
//   - CORS: cross-origin headers and preflight
//   - BodySizeLimit: request body cap
//   - RequestLogger: one log line per request, probes skipped
//
// Endpoints from server/endpoint: /health, /alive, /ready, /metrics, /version.
package server
