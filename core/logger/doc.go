// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production).
//
// # Registry Awareness
//
// Every registry component logs through a child logger carrying a "registry"
// field. ForRegistry builds that child so that lines from several registries in
// one process can be told apart.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Encoding: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Registry loaded")
//
//	l := logger.ForRegistry(log, "sprites")
//	l.Error("Failed to resolve entry", zap.Error(err))
package logger
