package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/lakshyafoods/storefront/config"
	"github.com/lakshyafoods/storefront/internal/observability"
	"github.com/lakshyafoods/storefront/models"
	"github.com/lakshyafoods/storefront/utils"
	"go.uber.org/zap"
)

const (
	// StateCookieName is the cookie name for OAuth state (CSRF)
	StateCookieName   = "oauth_state"
	stateCookieMaxAge = 600

	methodCredentials = "credentials"

	maxSignInBytes = 1 << 20
)

var (
	// ErrAccountDisabled is returned by an IdentityResolver for inactive users
	ErrAccountDisabled = errors.New("account disabled")

	// ErrUnverifiedEmail is returned when a provider identity would be linked
	// to an existing account through an email the provider has not verified
	ErrUnverifiedEmail = errors.New("provider email not verified")
)

// CredentialChecker verifies email/password pairs
type CredentialChecker interface {
	Verify(ctx context.Context, email, password string) (*Identity, error)
}

// IdentityResolver maps a provider identity onto a local user, creating or
// linking the account as needed
type IdentityResolver interface {
	ResolveExternalIdentity(ctx context.Context, ext *ExternalIdentity) (*models.User, error)
}

// Handler serves sign-in, sign-out, session and OAuth endpoints
type Handler struct {
	cfg      *config.Config
	sessions *SessionManager
	verifier CredentialChecker
	provider IdentityProvider // nil when Google sign-in is disabled
	resolver IdentityResolver
	logger   *zap.Logger
}

// NewHandler creates a new auth handler
func NewHandler(cfg *config.Config, sessions *SessionManager, verifier CredentialChecker, provider IdentityProvider, resolver IdentityResolver, logger *zap.Logger) *Handler {
	return &Handler{
		cfg:      cfg,
		sessions: sessions,
		verifier: verifier,
		provider: provider,
		resolver: resolver,
		logger:   logger,
	}
}

// SessionUser is the public view of a session principal
type SessionUser struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Image string          `json:"image,omitempty"`
	Role  models.UserRole `json:"role"`
}

// SessionResponse is returned by the session endpoints. Both fields are
// omitted for anonymous requests.
type SessionResponse struct {
	User    *SessionUser `json:"user,omitempty"`
	Expires *time.Time   `json:"expires,omitempty"`
}

func newSessionResponse(p Authenticated, expires time.Time) SessionResponse {
	return SessionResponse{
		User: &SessionUser{
			ID:    p.ID.String(),
			Name:  p.Name,
			Email: p.Email,
			Image: p.Image,
			Role:  p.Role,
		},
		Expires: &expires,
	}
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleSignIn verifies credentials and starts a session
func (h *Handler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxSignInBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	identity, err := h.verifier.Verify(r.Context(), req.Email, req.Password)
	if err != nil {
		observability.RecordSignIn(methodCredentials, "error")
		h.logger.Error("credential verification failed", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}
	if identity == nil {
		observability.RecordSignIn(methodCredentials, "failure")
		_ = utils.WriteUnauthorized(w, "Invalid email or password")
		return
	}

	session, err := h.sessions.Issue(*identity)
	if err != nil {
		h.logger.Error("failed to issue session", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	observability.RecordSignIn(methodCredentials, "success")
	h.logger.Info("user signed in",
		zap.String("user_id", identity.ID.String()),
		zap.String("method", methodCredentials))

	h.setSessionCookie(w, r, session)
	_ = utils.WriteJSON(w, http.StatusOK, newSessionResponse(session.Principal, session.ExpiresAt))
}

// HandleSignOut clears the session cookie
func (h *Handler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w, r, h.sessions.CookieName())
	_ = utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Signed out"})
}

// HandleSession reports the current session, or an empty object
func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	principal, expires, err := h.sessions.ReadWithExpiry(r)
	if err != nil {
		h.logger.Error("session reader unavailable", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	p, ok := principal.(Authenticated)
	if !ok {
		_ = utils.WriteJSON(w, http.StatusOK, SessionResponse{})
		return
	}
	_ = utils.WriteJSON(w, http.StatusOK, newSessionResponse(p, expires))
}

// HandleRefresh reissues the session token. The role in the new token is
// the role of the current token.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		_ = utils.WriteUnauthorized(w, "Unauthorized")
		return
	}

	session, err := h.sessions.Refresh(principal)
	if err != nil {
		h.logger.Error("failed to refresh session", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	h.setSessionCookie(w, r, session)
	_ = utils.WriteJSON(w, http.StatusOK, newSessionResponse(session.Principal, session.ExpiresAt))
}

// HandleGoogleLogin redirects to the Google consent page
func (h *Handler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		_ = utils.WriteNotFound(w, "Google sign-in is not enabled")
		return
	}

	state, err := generateSecureState()
	if err != nil {
		h.logger.Error("failed to generate state", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "Failed to initiate login")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     StateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   stateCookieMaxAge,
		HttpOnly: true,
		Secure:   h.secureCookies(r),
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// HandleGoogleCallback completes the Google flow, links or creates the
// local account and starts a session
func (h *Handler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		_ = utils.WriteNotFound(w, "Google sign-in is not enabled")
		return
	}

	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	if code == "" {
		_ = utils.WriteBadRequest(w, "Missing authorization code", nil)
		return
	}
	if state == "" {
		_ = utils.WriteBadRequest(w, "Missing state parameter", nil)
		return
	}

	stateCookie, err := r.Cookie(StateCookieName)
	if err != nil || stateCookie.Value != state {
		_ = utils.WriteBadRequest(w, "Invalid or expired state", nil)
		return
	}
	h.clearCookie(w, r, StateCookieName)

	ext, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		observability.RecordSignIn(ProviderGoogle, "failure")
		h.logger.Warn("google exchange failed", zap.Error(err))
		_ = utils.WriteUnauthorized(w, "Authentication failed")
		return
	}

	user, err := h.resolver.ResolveExternalIdentity(r.Context(), ext)
	switch {
	case errors.Is(err, ErrAccountDisabled):
		observability.RecordSignIn(ProviderGoogle, "failure")
		_ = utils.WriteForbidden(w, "Account disabled")
		return
	case errors.Is(err, ErrUnverifiedEmail):
		observability.RecordSignIn(ProviderGoogle, "failure")
		_ = utils.WriteUnauthorized(w, "Google account email is not verified")
		return
	case err != nil:
		observability.RecordSignIn(ProviderGoogle, "error")
		h.logger.Error("failed to resolve google identity", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	session, err := h.sessions.Issue(IdentityFromUser(user))
	if err != nil {
		h.logger.Error("failed to issue session", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	observability.RecordSignIn(ProviderGoogle, "success")
	h.logger.Info("user signed in",
		zap.String("user_id", user.ID.String()),
		zap.String("method", ProviderGoogle))

	h.setSessionCookie(w, r, session)

	redirectURL := h.cfg.Google.FrontEndURL
	if redirectURL == "" {
		redirectURL = "/"
	}
	http.Redirect(w, r, redirectURL, http.StatusFound)
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, r *http.Request, session *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.sessions.CookieName(),
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) secureCookies(r *http.Request) bool {
	return r.TLS != nil || strings.HasPrefix(h.cfg.Auth.URL, "https://")
}

func generateSecureState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
