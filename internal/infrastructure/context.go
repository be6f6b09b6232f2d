package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// RunIDContextKey carries the analysis run ID through a request
const RunIDContextKey contextKey = "run_id"

// GenerateTraceID creates a new unique trace ID using UUID v4
func GenerateTraceID() string {
	return uuid.New().String()
}

// ContextWithTraceID creates a new context with a generated trace ID
func ContextWithTraceID(ctx context.Context) context.Context {
	return WithTraceID(ctx, GenerateTraceID())
}

// EnsureTraceID ensures the context has a trace ID, generating one if needed
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) == "" {
		return ContextWithTraceID(ctx)
	}
	return ctx
}

// WithRunID stores the analysis run ID in the context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDContextKey, runID)
}

// GetRunID retrieves the analysis run ID from context
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDContextKey).(string); ok {
		return runID
	}
	return ""
}

// LoggerWithContext returns the global logger with the run ID from ctx.
// The trace ID is added by the handler at write time.
func LoggerWithContext(ctx context.Context) *slog.Logger {
	logger := GetLogger()
	if runID := GetRunID(ctx); runID != "" {
		logger = logger.With(slog.String("run_id", runID))
	}
	return logger
}

// InfoContext logs an info message with context awareness
func InfoContext(ctx context.Context, msg string, args ...any) {
	LoggerWithContext(ctx).InfoContext(ctx, msg, args...)
}

// ErrorContext logs an error message with context awareness
func ErrorContext(ctx context.Context, msg string, args ...any) {
	LoggerWithContext(ctx).ErrorContext(ctx, msg, args...)
}

// WarnContext logs a warning message with context awareness
func WarnContext(ctx context.Context, msg string, args ...any) {
	LoggerWithContext(ctx).WarnContext(ctx, msg, args...)
}

// WithComponent creates a logger with a component field
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = GetLogger()
	}
	return logger.With(slog.String("component", component))
}

// WithError creates a logger with an error field
func WithError(logger *slog.Logger, err error) *slog.Logger {
	if err == nil {
		return logger
	}
	return logger.With(slog.String("error", err.Error()))
}
