package middleware

import (
	"net/http"
	"net/url"

	"github.com/lakshyafoods/storefront/auth"
	"github.com/lakshyafoods/storefront/internal/observability"
	"github.com/lakshyafoods/storefront/utils"
	"go.uber.org/zap"
)

// RouteGate checks every request against the path policy before routing.
// Handlers still wrap themselves with RequireAuth / RequireAdmin.
type RouteGate struct {
	policy    *auth.Policy
	reader    SessionReader
	signInURL string
	logger    *zap.Logger
}

// NewRouteGate creates a gate over an immutable policy
func NewRouteGate(policy *auth.Policy, reader SessionReader, signInURL string, logger *zap.Logger) *RouteGate {
	return &RouteGate{
		policy:    policy,
		reader:    reader,
		signInURL: signInURL,
		logger:    logger,
	}
}

// Handler is the gate middleware
func (g *RouteGate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := g.policy.Match(r.URL.Path); !ok {
			next.ServeHTTP(w, r)
			return
		}

		requestID := GetRequestIDFromContext(r.Context())

		principal, err := g.reader.Read(r)
		if err != nil {
			observability.RecordAuthDecision(observability.LayerGate, observability.OutcomeReaderFailure)
			g.logger.Error("session reader failed at route gate",
				zap.String("request_id", requestID),
				zap.String("path", r.URL.Path),
				zap.Error(err))
			_ = utils.WriteInternalServerError(w, "")
			return
		}

		switch g.policy.Decide(r.URL.Path, principal) {
		case auth.Allow:
			observability.RecordAuthDecision(observability.LayerGate, observability.OutcomeAllowed)
			next.ServeHTTP(w, r)
		case auth.DenyForbidden:
			observability.RecordAuthDecision(observability.LayerGate, observability.OutcomeForbidden)
			g.logger.Warn("route gate denied",
				zap.String("request_id", requestID),
				zap.String("path", r.URL.Path))
			_ = utils.WriteForbidden(w, "Forbidden")
		case auth.DenyUnauthenticated:
			observability.RecordAuthDecision(observability.LayerGate, observability.OutcomeUnauthorized)
			g.logger.Warn("no session at route gate",
				zap.String("request_id", requestID),
				zap.String("path", r.URL.Path))
			_ = utils.WriteUnauthorized(w, "Unauthorized")
		case auth.RedirectToSignIn:
			observability.RecordAuthDecision(observability.LayerGate, observability.OutcomeRedirected)
			http.Redirect(w, r, g.signInRedirect(r), http.StatusFound)
		}
	})
}

func (g *RouteGate) signInRedirect(r *http.Request) string {
	target, err := url.Parse(g.signInURL)
	if err != nil {
		return g.signInURL
	}
	q := target.Query()
	q.Set("callbackUrl", r.URL.RequestURI())
	target.RawQuery = q.Encode()
	return target.String()
}
