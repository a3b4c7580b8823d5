package obscontext

import "context"

type requestIDKey struct{}

type memberIDKey struct{}

// WithRequestID stores the request correlation ID in the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request correlation ID, if set.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithMemberID stores the acting member ID in the context.
func WithMemberID(ctx context.Context, memberID string) context.Context {
	if memberID == "" {
		return ctx
	}
	return context.WithValue(ctx, memberIDKey{}, memberID)
}

// MemberIDFromContext returns the acting member ID, if set.
func MemberIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(memberIDKey{}).(string); ok {
		return v
	}
	return ""
}
