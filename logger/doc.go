// Package logger provides structured logging on top of zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields. The fan-in coordinator
// logs through a logger tagged with the "fanin" component unless one is
// supplied with fanin.WithLogger.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("aggregator")
//	log.Info("run finished", logger.Fields("run_id", id, "completed", n))
package logger
