package kit

import (
	"context"
	"log/slog"
	"time"
)

// Endpoint is a transport-agnostic action. HTTP handlers and MCP tools
// both dispatch to the same Endpoints.
type Endpoint func(ctx context.Context, request any) (response any, err error)

// Middleware wraps an Endpoint with cross-cutting concerns.
type Middleware func(Endpoint) Endpoint

// Chain composes middlewares so the first is outermost.
// Chain(a, b, c)(endpoint) == a(b(c(endpoint)))
func Chain(outer Middleware, others ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(others) - 1; i >= 0; i-- {
			next = others[i](next)
		}
		return outer(next)
	}
}

// Logging logs every endpoint call under name with the caller, transport and
// request ID found in ctx. Failures log at Warn, successes at Debug.
func Logging(logger *slog.Logger, name string) Middleware {
	return func(next Endpoint) Endpoint {
		return func(ctx context.Context, request any) (any, error) {
			start := time.Now()
			resp, err := next(ctx, request)
			attrs := []slog.Attr{
				slog.String("endpoint", name),
				slog.String("user_id", GetUserID(ctx)),
				slog.String("transport", GetTransport(ctx)),
				slog.Duration("duration", time.Since(start)),
			}
			if id := GetRequestID(ctx); id != "" {
				attrs = append(attrs, slog.String("request_id", id))
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
				logger.LogAttrs(ctx, slog.LevelWarn, "endpoint failed", attrs...)
				return nil, err
			}
			logger.LogAttrs(ctx, slog.LevelDebug, "endpoint done", attrs...)
			return resp, nil
		}
	}
}
