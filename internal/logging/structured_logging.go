package logging

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// loggerKey is used to store the logger in context
type loggerKey struct{}

// NewStructuredLogger creates a new structured logger with JSON output
func NewStructuredLogger(w io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}
	handler := slog.NewJSONHandler(w, opts)
	return slog.New(handler)
}

// OrDiscard returns logger, or a logger that drops everything when logger is nil.
func OrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}

// LogError logs an error with structured context
func LogError(logger *slog.Logger, message string, err error, attrs ...slog.Attr) {
	if logger == nil {
		return
	}

	args := make([]any, 0, len(attrs)+1)
	args = append(args, slog.String("error", err.Error()))
	for _, attr := range attrs {
		args = append(args, attr)
	}

	logger.Error(message, args...)
}

// LogOperation logs an operation with structured context
func LogOperation(logger *slog.Logger, operation string, attrs ...slog.Attr) {
	if logger == nil {
		return
	}

	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		// Skip zero-value durations
		if attr.Key == "duration" && attr.Value.Duration() == 0 {
			continue
		}
		args = append(args, attr)
	}

	logger.Info(operation, args...)
}

// LogTiming logs how long an operation took since start at debug level.
func LogTiming(logger *slog.Logger, operation string, start time.Time, attrs ...slog.Attr) {
	if logger == nil {
		return
	}

	args := make([]any, 0, len(attrs)+2)
	args = append(args,
		slog.String("operation", operation),
		slog.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000))
	for _, attr := range attrs {
		args = append(args, attr)
	}

	logger.Debug("timing", args...)
}

// LogFeedStatus records whether a feed group was usable in this pass.
func LogFeedStatus(logger *slog.Logger, group, url string, err error, duration time.Duration) {
	if logger == nil {
		return
	}

	if err != nil {
		logger.Warn("feed_failed",
			slog.String("group", group),
			slog.String("url", url),
			slog.String("error", err.Error()),
			slog.Duration("duration", duration))
		return
	}

	logger.Debug("feed_working",
		slog.String("group", group),
		slog.String("url", url),
		slog.Duration("duration", duration))
}

// LogMatch records which rule paired a station with a feed stop id.
// Degraded matches are logged at warn level.
func LogMatch(logger *slog.Logger, baseStopID, direction, feedStopID, rule string, degraded bool) {
	if logger == nil {
		return
	}

	args := []any{
		slog.String("base_stop_id", baseStopID),
		slog.String("direction", direction),
		slog.String("feed_stop_id", feedStopID),
		slog.String("rule", rule),
	}
	if degraded {
		logger.Warn("degraded_stop_match", args...)
		return
	}
	logger.Debug("stop_match", args...)
}

// LogHTTPRequest logs HTTP request details
func LogHTTPRequest(logger *slog.Logger, method, path string, status int, durationMs float64, attrs ...slog.Attr) {
	if logger == nil {
		return
	}

	args := make([]any, 0, len(attrs)+4)
	args = append(args,
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("duration_ms", durationMs),
	)
	for _, attr := range attrs {
		args = append(args, attr)
	}

	logger.Info("http_request", args...)
}

// WithLogger adds a logger to the context
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext retrieves a logger from the context, or returns a default logger
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}

	return slog.Default()
}
