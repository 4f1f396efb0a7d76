// internal/pkg/gate/gate.go
package gate

import "sentra-auth/internal/pkg/session"

// Decision is the outcome of evaluating a session against a route policy.
type Decision int

const (
	Allow Decision = iota
	Unauthenticated
	SecondFactorRequired
	Forbidden
	SetupIncomplete
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Unauthenticated:
		return "unauthenticated"
	case SecondFactorRequired:
		return "second_factor_required"
	case Forbidden:
		return "forbidden"
	case SetupIncomplete:
		return "setup_incomplete"
	default:
		return "unknown"
	}
}

// Policy is an immutable per-route configuration value. Routes get their own
// copy at registration time; nothing mutates a Policy after that.
type Policy struct {
	// AllowedRoles restricts the route to the listed roles. Empty means any
	// authenticated role.
	AllowedRoles []string
	// RequireCompleted rejects users who have not finished provider setup.
	// The route performing setup completion must leave this false, or no
	// legitimate path could ever complete it.
	RequireCompleted bool
	// SkipSecondFactor admits sessions whose second factor is still
	// pending. Only the route that validates the 2FA code sets this, for
	// the same reason the completion route skips RequireCompleted.
	SkipSecondFactor bool
}

// Evaluate gates a request. Checks run in a fixed order; the first failure
// wins. The session state is never mutated here — that is business logic's
// job after the gate passes.
func Evaluate(s *session.State, p Policy) Decision {
	if s == nil || s.User == nil {
		return Unauthenticated
	}
	u := s.User

	// First factor succeeded but the second is still pending: distinct from
	// plain unauthenticated so callers can route to the 2FA challenge.
	if !p.SkipSecondFactor && u.TFA.Enabled && !u.TFA.Authenticated {
		return SecondFactorRequired
	}

	if len(p.AllowedRoles) > 0 && !roleAllowed(p.AllowedRoles, u.Role) {
		return Forbidden
	}

	if p.RequireCompleted && !u.Provider.Completed {
		return SetupIncomplete
	}

	return Allow
}

func roleAllowed(allowed []string, role string) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
