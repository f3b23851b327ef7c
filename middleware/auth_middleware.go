package middleware

import (
	"net/http"

	"github.com/lakshyafoods/storefront/auth"
	"github.com/lakshyafoods/storefront/internal/observability"
	"github.com/lakshyafoods/storefront/utils"
	"go.uber.org/zap"
)

// SessionReader derives the principal of a request. An error means the
// reader itself is unusable, not that the request has no session.
type SessionReader interface {
	Read(r *http.Request) (auth.Principal, error)
}

// AuthMiddleware provides the per-handler authorization wrappers
type AuthMiddleware struct {
	reader SessionReader
	logger *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(reader SessionReader, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		reader: reader,
		logger: logger,
	}
}

// RequireAuth lets signed-in users through and attaches their principal to
// the request context
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return m.require(auth.CapabilityAuthenticated, next)
}

// RequireAdmin lets admins through and attaches their principal to the
// request context
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return m.require(auth.CapabilityAdmin, next)
}

func (m *AuthMiddleware) require(capability auth.Capability, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		principal, err := m.reader.Read(r)
		if err != nil {
			observability.RecordAuthDecision(observability.LayerHandler, observability.OutcomeReaderFailure)
			m.logger.Error("session reader failed",
				zap.String("request_id", requestID),
				zap.String("path", r.URL.Path),
				zap.Error(err))
			_ = utils.WriteInternalServerError(w, "")
			return
		}

		switch auth.Authorize(capability, principal) {
		case auth.DenyUnauthenticated:
			observability.RecordAuthDecision(observability.LayerHandler, observability.OutcomeUnauthorized)
			m.logger.Warn("no session",
				zap.String("request_id", requestID),
				zap.String("path", r.URL.Path))
			_ = utils.WriteUnauthorized(w, "Unauthorized")
			return
		case auth.DenyForbidden:
			p, _ := principal.(auth.Authenticated)
			observability.RecordAuthDecision(observability.LayerHandler, observability.OutcomeForbidden)
			m.logger.Warn("insufficient permissions",
				zap.String("request_id", requestID),
				zap.String("path", r.URL.Path),
				zap.String("user_id", p.ID.String()),
				zap.String("required", capability.String()))
			_ = utils.WriteForbidden(w, "Forbidden")
			return
		}

		p, ok := principal.(auth.Authenticated)
		if !ok {
			// Authorize only allows Authenticated for a non-empty capability
			_ = utils.WriteUnauthorized(w, "Unauthorized")
			return
		}

		observability.RecordAuthDecision(observability.LayerHandler, observability.OutcomeAllowed)
		m.logger.Debug("authorization passed",
			zap.String("request_id", requestID),
			zap.String("user_id", p.ID.String()),
			zap.String("required", capability.String()))

		next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(ctx, p)))
	})
}
