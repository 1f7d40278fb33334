// Package reqctx carries per-request identity through a context.
package reqctx

import "context"

type (
	requestIDKey struct{}
	clientKey    struct{}
)

// WithRequestID returns a context that carries the given request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request ID stored in ctx, or an empty string.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithClient returns a context that carries the caller identity used for
// rate limiting and logging.
func WithClient(ctx context.Context, client string) context.Context {
	return context.WithValue(ctx, clientKey{}, client)
}

// Client returns the caller identity stored in ctx, or "unknown".
func Client(ctx context.Context) string {
	if c, ok := ctx.Value(clientKey{}).(string); ok && c != "" {
		return c
	}
	return "unknown"
}
