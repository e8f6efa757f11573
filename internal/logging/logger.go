// Package logging provides structured logging configuration using log/slog.
//
// Correlation fields are carried through context.Context, the way chi's
// RequestID middleware carries a request ID through a request's lifetime.
// Here the carried fields are jobId and, inside a file worker, filePath,
// since there is no HTTP surface in this repository.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

type contextKey int

const (
	jobIDKey contextKey = iota
	filePathKey
)

// Setup configures the global slog logger based on level and format.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
//
// Use "json" format in production for machine parsing (ELK, CloudWatch, etc.)
// Use "text" format in development for human readability.
func Setup(level, format string) {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithJobID returns a context carrying jobID for later retrieval by FromContext.
func WithJobID(ctx context.Context, jobID string) context.Context {
	return context.WithValue(ctx, jobIDKey, jobID)
}

// WithFilePath returns a context carrying filePath for later retrieval by FromContext.
func WithFilePath(ctx context.Context, filePath string) context.Context {
	return context.WithValue(ctx, filePathKey, filePath)
}

// FromContext returns a logger enriched with whichever correlation fields
// the context carries: jobId, then filePath.
//
// Usage:
//
//	logger := logging.FromContext(ctx)
//	logger.Info("processing file", "linesRead", jf.LinesRead)
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()

	if jobID, ok := ctx.Value(jobIDKey).(string); ok && jobID != "" {
		logger = logger.With("jobId", jobID)
	}
	if filePath, ok := ctx.Value(filePathKey).(string); ok && filePath != "" {
		logger = logger.With("filePath", filePath)
	}

	return logger
}

// WithFields returns a logger with additional structured fields.
//
// This is useful for creating operation-specific loggers that carry
// consistent context through a multi-step process.
//
// Usage:
//
//	jobLogger := logging.WithFields(ctx, "rootFolder", rootFolder)
//	jobLogger.Info("job started")
//	// ... later ...
//	jobLogger.Info("job completed", "processedFiles", job.ProcessedFiles)
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
