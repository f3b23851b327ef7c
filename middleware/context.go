package middleware

import (
	"context"
	"net"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/lakshyafoods/storefront/auth"
)

// Context key type to avoid collisions
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
)

// GetRequestIDFromContext retrieves the request ID from context. IDs set
// by chi's RequestID middleware are returned when none was set explicitly.
func GetRequestIDFromContext(ctx context.Context) string {
	if val := ctx.Value(RequestIDKey); val != nil {
		if requestID, ok := val.(string); ok && requestID != "" {
			return requestID
		}
	}
	return chimw.GetReqID(ctx)
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetUserIDFromContext retrieves the authenticated user ID, or uuid.Nil
func GetUserIDFromContext(ctx context.Context) uuid.UUID {
	if p, ok := auth.PrincipalFromContext(ctx); ok {
		return p.ID
	}
	return uuid.Nil
}

// RequestMetadata is recorded alongside admin actions
type RequestMetadata struct {
	RequestID string
	IPAddress string
	UserAgent string
}

// GetRequestMetadata collects the request ID, client IP and user agent.
// RemoteAddr is already rewritten by chi's RealIP middleware when it runs.
func GetRequestMetadata(r *http.Request) RequestMetadata {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return RequestMetadata{
		RequestID: GetRequestIDFromContext(r.Context()),
		IPAddress: ip,
		UserAgent: r.UserAgent(),
	}
}
