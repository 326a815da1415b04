// Package log provides structured logging for spool components.
//
// The package exposes a Logger interface with a typed Field API and a
// pluggable Formatter/Output pipeline. Records are routed through a
// log/slog bridge handler so components that speak slog share the same
// pipeline. Construct loggers explicitly and inject them; there is no
// package-level default logger.
package log
