// Package logger provides structured logging based on Zap.
//
// New builds a development or production logger from Config. The level is parsed from
// the configuration and the encoding is json or console.
//
// WithRayID extracts the ray id that the rayid middleware stored on a Fiber context and
// attaches it to the logger, so every line of one request can be correlated.
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Server started")
//
//	l := logger.WithRayID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
