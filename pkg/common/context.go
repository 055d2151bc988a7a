package common

import "context"

// ContextKey represents a context key type
type ContextKey string

// ContextKeyRequestID holds the API Gateway request id of a Lambda invocation.
const ContextKeyRequestID ContextKey = "request_id"

// WithRequestID adds request ID to context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// GetRequestID extracts request ID from context
func GetRequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(ContextKeyRequestID).(string)
	return requestID, ok
}
