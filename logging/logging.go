// Package logging wraps zap to produce structured, leveled logs keyed by
// a per-operation correlation id, so every log line belonging to one
// workflow call can be grepped together.
package logging

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type correlationIDKey struct{}

// WithCorrelationID attaches id to ctx for later retrieval by FromContext.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// CorrelationID returns the id attached by WithCorrelationID, or "".
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey{}).(string)
	return id
}

// New builds a production zap.Logger at the given level ("debug", "info",
// "warn", "error"; unrecognized values fall back to "info"), along with
// the AtomicLevel backing it so a caller can hot-reload the level later
// via SetLevel.
func New(level string) (*zap.Logger, zap.AtomicLevel, error) {
	var zl zapcore.Level
	if err := zl.UnmarshalText([]byte(level)); err != nil {
		zl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zl)
	logger, err := cfg.Build()
	return logger, cfg.Level, err
}

// FromContext returns logger annotated with the request's correlation id,
// if one is present on ctx.
func FromContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	if id := CorrelationID(ctx); id != "" {
		return logger.With(zap.String("correlation_id", id))
	}
	return logger
}

// SetLevel atomically updates a logger built with an AtomicLevel — called
// from cmd/workflowd's config.Watcher callback to hot-reload the log level
// without restarting.
func SetLevel(atomic zap.AtomicLevel, level string) {
	var zl zapcore.Level
	if err := zl.UnmarshalText([]byte(level)); err != nil {
		return
	}
	atomic.SetLevel(zl)
}
