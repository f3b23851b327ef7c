package auth

import (
	"fmt"
	"path"
	"strings"
)

// Rule binds a path pattern to the capability it requires. Pattern "/x"
// matches "/x" and every path below it.
type Rule struct {
	Pattern    string
	Capability Capability
}

// Policy is an ordered, immutable list of rules. The first matching rule
// wins; paths no rule matches need no capability.
type Policy struct {
	rules []Rule
}

// NewPolicy validates and copies rules
func NewPolicy(rules ...Rule) (*Policy, error) {
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if !strings.HasPrefix(r.Pattern, "/") {
			return nil, fmt.Errorf("policy pattern %q must start with /", r.Pattern)
		}
		if r.Pattern != "/" && strings.HasSuffix(r.Pattern, "/") {
			return nil, fmt.Errorf("policy pattern %q must not end with /", r.Pattern)
		}
		if r.Capability < CapabilityNone || r.Capability > CapabilityAdmin {
			return nil, fmt.Errorf("policy pattern %q has unknown capability %d", r.Pattern, r.Capability)
		}
		out = append(out, r)
	}
	return &Policy{rules: out}, nil
}

// DefaultPolicy protects the admin area and the customer account area
func DefaultPolicy() *Policy {
	policy, err := NewPolicy(
		Rule{Pattern: "/api/admin", Capability: CapabilityAdmin},
		Rule{Pattern: "/admin", Capability: CapabilityAdmin},
		Rule{Pattern: "/api/user", Capability: CapabilityAuthenticated},
		Rule{Pattern: "/profile", Capability: CapabilityAuthenticated},
		Rule{Pattern: "/api/auth/refresh", Capability: CapabilityAuthenticated},
	)
	if err != nil {
		panic(err)
	}
	return policy
}

// Match returns the first rule matching the cleaned request path
func (p *Policy) Match(requestPath string) (Rule, bool) {
	cleaned := cleanPath(requestPath)
	for _, r := range p.rules {
		if matchPattern(r.Pattern, cleaned) {
			return r, true
		}
	}
	return Rule{}, false
}

// Decide evaluates the policy for a request path. Admin rules answer
// DenyForbidden to anyone who is not an admin, signed in or not.
// Authenticated rules answer DenyUnauthenticated for API paths and
// RedirectToSignIn for page paths.
func (p *Policy) Decide(requestPath string, principal Principal) Decision {
	rule, ok := p.Match(requestPath)
	if !ok {
		return Allow
	}

	decision := Authorize(rule.Capability, principal)
	switch {
	case decision == Allow:
		return Allow
	case rule.Capability == CapabilityAdmin:
		return DenyForbidden
	case IsAPIPath(requestPath):
		return DenyUnauthenticated
	default:
		return RedirectToSignIn
	}
}

// IsAPIPath reports whether p is served as JSON rather than a page
func IsAPIPath(p string) bool {
	return matchPattern("/api", cleanPath(p))
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	return path.Clean("/" + p)
}

func matchPattern(pattern, p string) bool {
	if pattern == "/" {
		return true
	}
	return p == pattern || strings.HasPrefix(p, pattern+"/")
}
