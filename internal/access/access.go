// Package access decides whether the current session may enter a protected
// area. The gates are pure: they return a Decision and leave navigation to
// the caller.
package access

import (
	"net/url"

	"github.com/duynhne/loaner-service/internal/core/domain"
)

// Default redirect targets.
const (
	LoginPath = "/login"
	HomePath  = "/"
)

// ReturnURLParam carries the originally requested destination to the login
// entry point.
const ReturnURLParam = "returnUrl"

// State is the session view the gates need.
type State interface {
	IsAuthenticated() bool
	CurrentUser() *domain.AuthUser
}

// Reason says why a gate denied entry.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonUnauthenticated  Reason = "unauthenticated"
	ReasonInsufficientRole Reason = "insufficient_role"
)

// Decision is the outcome of a gate.
type Decision struct {
	Allowed bool
	Reason  Reason

	// Redirect is where the caller should navigate when entry is denied.
	Redirect string

	// ReturnTo is the destination to resume after login. It is passed
	// through untouched.
	ReturnTo string
}

// RedirectURL renders Redirect with ReturnTo as a query parameter.
func (d Decision) RedirectURL() string {
	if d.Allowed || d.Redirect == "" {
		return ""
	}
	if d.ReturnTo == "" {
		return d.Redirect
	}
	return d.Redirect + "?" + url.Values{ReturnURLParam: {d.ReturnTo}}.Encode()
}

var allow = Decision{Allowed: true}

// CanEnterProtectedArea allows any authenticated session. Otherwise it
// redirects to the login entry point, carrying destination along.
func CanEnterProtectedArea(s State, destination string) Decision {
	if s.IsAuthenticated() {
		return allow
	}
	return Decision{Reason: ReasonUnauthenticated, Redirect: LoginPath, ReturnTo: destination}
}

// CanEnterAdminArea allows only authenticated admins. Everyone else,
// signed in or not, is sent home without explanation.
func CanEnterAdminArea(s State) Decision {
	return requireRole(s, domain.RoleAdmin)
}

// CanEnterStaffArea allows authenticated staff and admins.
func CanEnterStaffArea(s State) Decision {
	return requireRole(s, domain.RoleStaff, domain.RoleAdmin)
}

func requireRole(s State, roles ...domain.Role) Decision {
	if !s.IsAuthenticated() {
		return Decision{Reason: ReasonUnauthenticated, Redirect: HomePath}
	}
	user := s.CurrentUser()
	if user != nil {
		for _, role := range roles {
			if user.Role == role {
				return allow
			}
		}
	}
	return Decision{Reason: ReasonInsufficientRole, Redirect: HomePath}
}

// Static is a fixed State, for callers that already hold verified claims.
type Static struct {
	Authenticated bool
	User          *domain.AuthUser
}

func (s Static) IsAuthenticated() bool         { return s.Authenticated }
func (s Static) CurrentUser() *domain.AuthUser { return s.User }
