// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets these values; services and audit publishers read them
// without importing any net/http code.
package requestcontext

import "context"

type (
	requestIDKey struct{}
	clientIPKey  struct{}
	clientUAKey  struct{}
	analystKey   struct{}
)

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}

// ClientUA retrieves the normalized client User-Agent from the context.
func ClientUA(ctx context.Context) string {
	if ua, ok := ctx.Value(clientUAKey{}).(string); ok {
		return ua
	}
	return ""
}

// WithClientMetadata injects client IP and User-Agent into a context.
// Useful for service unit tests that don't run the full middleware chain.
func WithClientMetadata(ctx context.Context, clientIP, clientUA string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, clientIP)
	ctx = context.WithValue(ctx, clientUAKey{}, clientUA)
	return ctx
}

// Analyst retrieves the authenticated analyst from the context.
func Analyst(ctx context.Context) string {
	if analyst, ok := ctx.Value(analystKey{}).(string); ok {
		return analyst
	}
	return ""
}

// WithAnalyst injects the authenticated analyst into the context.
func WithAnalyst(ctx context.Context, analyst string) context.Context {
	return context.WithValue(ctx, analystKey{}, analyst)
}
