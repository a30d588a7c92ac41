// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured JSON logging
// with configurable log levels, and carries loggers through request contexts so
// trace metadata attached at the edge follows the request into stores and services.
package logger
