package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/lakshyafoods/storefront/models"
)

// Principal is the identity a request acts as. It is either Anonymous or
// Authenticated and is re-derived from the session token on every request.
type Principal interface {
	principal()
}

// Anonymous is a request without a valid session
type Anonymous struct{}

// Authenticated is a request carrying a valid session token. Role is the
// role recorded in the token when it was issued.
type Authenticated struct {
	ID    uuid.UUID
	Email string
	Name  string
	Image string
	Role  models.UserRole
}

func (Anonymous) principal()     {}
func (Authenticated) principal() {}

// IsAdmin reports whether the principal holds the admin role
func (a Authenticated) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// Capability is the access level a route or handler requires
type Capability int

const (
	CapabilityNone Capability = iota
	CapabilityAuthenticated
	CapabilityAdmin
)

func (c Capability) String() string {
	switch c {
	case CapabilityNone:
		return "none"
	case CapabilityAuthenticated:
		return "authenticated"
	case CapabilityAdmin:
		return "admin"
	}
	return "unknown"
}

// Decision is the outcome of an authorization check
type Decision int

const (
	// Allow lets the request through
	Allow Decision = iota
	// DenyUnauthenticated answers 401
	DenyUnauthenticated
	// DenyForbidden answers 403
	DenyForbidden
	// RedirectToSignIn sends a page request to the sign-in page
	RedirectToSignIn
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "unauthenticated"
	case DenyForbidden:
		return "forbidden"
	case RedirectToSignIn:
		return "redirect"
	}
	return "unknown"
}

// Authorize checks a principal against a required capability. An
// anonymous principal is always DenyUnauthenticated when any capability is
// required; an authenticated non-admin is DenyForbidden for CapabilityAdmin.
func Authorize(required Capability, p Principal) Decision {
	if required == CapabilityNone {
		return Allow
	}

	switch p := p.(type) {
	case Authenticated:
		if required == CapabilityAdmin && !p.IsAdmin() {
			return DenyForbidden
		}
		return Allow
	case Anonymous, nil:
		return DenyUnauthenticated
	}
	return DenyUnauthenticated
}

type principalContextKey struct{}

// WithPrincipal returns a context carrying p
func WithPrincipal(ctx context.Context, p Authenticated) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext returns the authenticated principal attached by the
// handler authorization wrapper
func PrincipalFromContext(ctx context.Context) (Authenticated, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Authenticated)
	return p, ok
}
