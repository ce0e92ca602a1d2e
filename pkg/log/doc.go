// Package log provides OneVault's structured logging facade.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// Field type for structured context. Internally it is backed by Go's standard
// library slog via a custom handler that routes records through a pluggable
// formatter/output pipeline, keeping output consistent across the codebase.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("vault"), log.Str("tenant", "t1"))
//	l.Info("store opened", log.Int("versions", 3))
//
// # Configuration
//
// Use ApplyConfig to build a logger from a declarative Config, supporting
// text or JSON formatting. To integrate with libraries expecting *log.Logger
// (Pebble among them), use RedirectStdLog or ToStdLogger.
package log
