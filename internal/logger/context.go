package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// ContextWithLogger stores a logger in the context.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the context logger, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	return FromContextOr(ctx, zap.NewNop())
}

// FromContextOr returns the context logger, or fallback when none is set.
func FromContextOr(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	return fallback
}

// Scoped derives a child of the context logger (or fallback) carrying fields and
// stores it back, so later lines of the same operation share them.
// An HTTP request id set upstream is kept.
func Scoped(ctx context.Context, fallback *zap.Logger, fields ...zap.Field) (context.Context, *zap.Logger) {
	l := FromContextOr(ctx, fallback).With(fields...)
	return ContextWithLogger(ctx, l), l
}
