package logger

import (
	"context"
	"log/slog"
)

// loggerContextKey is the private context key type for storing loggers.
// Using a private type prevents collisions with keys from other packages.
type loggerContextKey struct{}

// WithLogger returns a new context carrying the given logger. Handlers and
// middleware attach request-scoped loggers (with trace IDs and similar
// attributes) so downstream code logs with the same metadata.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, logger)
}

// FromContext retrieves the logger stored in the context, or the process
// default logger when none is present. The returned logger is never nil.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerContextKey{}).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	return slog.Default()
}

// FromContextOrDefault retrieves the logger stored in the context, falling
// back to the provided logger when none is present. Components pass their
// own tagged logger as the fallback so logs stay attributed even outside a
// request.
func FromContextOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerContextKey{}).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	if fallback != nil {
		return fallback
	}
	return slog.Default()
}
