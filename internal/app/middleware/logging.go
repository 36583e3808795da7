package middleware

import (
	"context"
	"log/slog"
	"time"
)

func logging(logger *slog.Logger, kind string) around {
	return func(ctx context.Context, msg message, next func(context.Context) (any, error)) (any, error) {
		start := time.Now()
		res, err := next(ctx)
		if logger == nil {
			return res, err
		}
		attrs := []any{"kind", kind, "key", msg.Key(), "duration", time.Since(start)}
		if err != nil {
			logger.WarnContext(ctx, "bus message failed", append(attrs, "error", err)...)
			return res, err
		}
		logger.DebugContext(ctx, "bus message handled", attrs...)
		return res, err
	}
}

// CommandLogging logs every dispatched command with its duration and outcome.
func CommandLogging(logger *slog.Logger) CommandMiddleware {
	return logging(logger, "command").commands()
}

// QueryLogging logs every query with its duration and outcome.
func QueryLogging(logger *slog.Logger) QueryMiddleware {
	return logging(logger, "query").queries()
}
