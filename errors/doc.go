// Package errors provides the structured error type shared by the fan-in
// coordinator, its observers and the aggregator.
//
// Every failure the coordinator produces itself (timeouts, panics,
// cancellation, duplicate reports, invalid input) is an *AppError with a
// machine-readable code, so callers can branch with HasCode or errors.As.
package errors
