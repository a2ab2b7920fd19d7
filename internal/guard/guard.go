// Package guard decides whether a protected view may render for the current
// session. It is a convenience for the visitor; the backend enforces its own
// authorization.
package guard

import (
	"slices"

	"github.com/ghaggin/authgate/internal/model"
)

// Verdict is the outcome of a guard evaluation.
type Verdict int

const (
	// Allow renders the protected view.
	Allow Verdict = iota

	// RedirectLogin sends a visitor without a session to the login view.
	RedirectLogin

	// RedirectDefault sends a logged in visitor whose role is not allowed
	// to the default view.
	RedirectDefault
)

func (v Verdict) String() string {
	switch v {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect-to-login"
	case RedirectDefault:
		return "redirect-to-default"
	default:
		return "unknown"
	}
}

// Roles is the set of roles a route admits. A nil or empty set admits any
// logged in session.
type Roles []string

func (r Roles) Restricted() bool {
	return len(r) > 0
}

type Policy struct {
	// PermitMissingRole admits a session that carries no role claim to a
	// restricted route.
	PermitMissingRole bool
}

// Decide evaluates a session against a route's allowed roles. Being logged
// out takes precedence over every role check.
func Decide(s model.Session, allowed Roles, p Policy) Verdict {
	if !s.Authenticated() {
		return RedirectLogin
	}

	if !allowed.Restricted() {
		return Allow
	}

	role, ok := s.Role()
	if !ok {
		if p.PermitMissingRole {
			return Allow
		}
		return RedirectDefault
	}

	if slices.Contains(allowed, role) {
		return Allow
	}

	return RedirectDefault
}
