// Package observability carries the logging and metrics ambient stack:
// TracedLogger wraps log/slog and correlates records with an active
// OpenTelemetry span, and metrics.go defines one OpenTelemetry instrument
// per search-driver counter over a Prometheus exporter.
package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// TracedLogger is a structured logger tagged with a search-session ID and
// correlated with an OpenTelemetry span when one is active, the way the
// teacher's TracedLogger tags every record with mission/agent context.
type TracedLogger struct {
	logger    *slog.Logger
	sessionID string
}

// NewTracedLogger wraps handler with session correlation.
func NewTracedLogger(handler slog.Handler, sessionID string) *TracedLogger {
	return &TracedLogger{logger: slog.New(handler), sessionID: sessionID}
}

func (l *TracedLogger) with(ctx context.Context) *slog.Logger {
	logger := l.logger.With(slog.String("session_id", l.sessionID))
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		sc := span.SpanContext()
		logger = logger.With(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return logger
}

func (l *TracedLogger) Debug(ctx context.Context, msg string, args ...any) { l.with(ctx).Debug(msg, args...) }
func (l *TracedLogger) Info(ctx context.Context, msg string, args ...any)  { l.with(ctx).Info(msg, args...) }
func (l *TracedLogger) Warn(ctx context.Context, msg string, args ...any)  { l.with(ctx).Warn(msg, args...) }
func (l *TracedLogger) Error(ctx context.Context, msg string, args ...any) { l.with(ctx).Error(msg, args...) }
