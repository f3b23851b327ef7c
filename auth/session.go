package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lakshyafoods/storefront/models"
)

// ErrSigningKeyUnavailable is returned when the session manager has no key
// material. It is an infrastructure failure, not a missing session.
var ErrSigningKeyUnavailable = errors.New("session signing key unavailable")

// SessionClaims is the payload of a session token
type SessionClaims struct {
	jwt.RegisteredClaims
	Role    string `json:"role"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// Session is a freshly issued token and the principal it encodes
type Session struct {
	Token     string
	ExpiresAt time.Time
	Principal Authenticated
}

// SessionManager issues and reads HS256 session tokens
type SessionManager struct {
	secret     []byte
	ttl        time.Duration
	cookieName string
	now        func() time.Time
}

// NewSessionManager creates a session manager. An empty secret yields a
// manager whose every operation fails with ErrSigningKeyUnavailable.
func NewSessionManager(secret string, ttl time.Duration, cookieName string) *SessionManager {
	return &SessionManager{
		secret:     []byte(secret),
		ttl:        ttl,
		cookieName: cookieName,
		now:        time.Now,
	}
}

// CookieName returns the name of the session cookie
func (m *SessionManager) CookieName() string {
	return m.cookieName
}

// Issue mints a token for a verified identity
func (m *SessionManager) Issue(identity Identity) (*Session, error) {
	return m.sign(Authenticated{
		ID:    identity.ID,
		Email: identity.Email,
		Name:  identity.Name,
		Image: identity.Image,
		Role:  identity.Role,
	})
}

// Refresh mints a replacement token for a principal read from an existing
// token. The role is carried over unchanged; the user record is not read.
func (m *SessionManager) Refresh(previous Authenticated) (*Session, error) {
	return m.sign(previous)
}

func (m *SessionManager) sign(p Authenticated) (*Session, error) {
	if len(m.secret) == 0 {
		return nil, ErrSigningKeyUnavailable
	}

	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role:    string(p.Role),
		Email:   p.Email,
		Name:    p.Name,
		Picture: p.Image,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return &Session{
		Token:     token,
		ExpiresAt: expiresAt.Truncate(time.Second),
		Principal: p,
	}, nil
}

// Parse decodes a token. Every invalid token (malformed, expired, bad
// signature, wrong algorithm, unknown role, non-UUID subject) yields
// Anonymous with a nil error.
func (m *SessionManager) Parse(token string) (Principal, time.Time, error) {
	if len(m.secret) == 0 {
		return nil, time.Time{}, ErrSigningKeyUnavailable
	}
	if token == "" {
		return Anonymous{}, time.Time{}, nil
	}

	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return Anonymous{}, time.Time{}, nil
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Anonymous{}, time.Time{}, nil
	}
	role, ok := models.ParseRole(claims.Role)
	if !ok {
		return Anonymous{}, time.Time{}, nil
	}

	return Authenticated{
		ID:    id,
		Email: claims.Email,
		Name:  claims.Name,
		Image: claims.Picture,
		Role:  role,
	}, claims.ExpiresAt.Time, nil
}

// Read derives the principal of a request
func (m *SessionManager) Read(r *http.Request) (Principal, error) {
	p, _, err := m.Parse(m.TokenFromRequest(r))
	return p, err
}

// ReadWithExpiry derives the principal of a request and its token expiry
func (m *SessionManager) ReadWithExpiry(r *http.Request) (Principal, time.Time, error) {
	return m.Parse(m.TokenFromRequest(r))
}

// TokenFromRequest returns the bearer token, or the session cookie value
func (m *SessionManager) TokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := r.Cookie(m.cookieName); err == nil {
		return cookie.Value
	}
	return ""
}
