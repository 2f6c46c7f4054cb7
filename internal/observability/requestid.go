package observability

import "context"

type contextKey string

const requestIDKey contextKey = "request-id"

// RequestIDHeader carries the correlation id between the service and the backend.
const RequestIDHeader = "X-Request-ID"

// WithRequestID stores the request correlation id on the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext retrieves the id stored by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
