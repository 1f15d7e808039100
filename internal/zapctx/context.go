// Package zapctx carries a *zap.Logger through a context.Context.
package zapctx

import (
	"context"

	"go.uber.org/zap"
)

type logKey struct{}

// FromContext returns the logger stored in ctx, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return zap.NewNop()
	}
	logger, ok := ctx.Value(logKey{}).(*zap.Logger)
	if !ok || logger == nil {
		return zap.NewNop()
	}
	return logger
}

func ToContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, logKey{}, logger)
}

// With derives a logger carrying fields and stores it in the returned context.
func With(ctx context.Context, fields ...zap.Field) (context.Context, *zap.Logger) {
	logger := FromContext(ctx).With(fields...)
	return ToContext(ctx, logger), logger
}

// Named is With for a named sub-logger.
func Named(ctx context.Context, name string) (context.Context, *zap.Logger) {
	logger := FromContext(ctx).Named(name)
	return ToContext(ctx, logger), logger
}
