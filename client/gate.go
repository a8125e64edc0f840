package client

import "context"

// Decision is the outcome of evaluating the gates in front of a
// protected view.
type Decision int

const (
	// Allow renders the protected content.
	Allow Decision = iota
	// RedirectLogin means there is no valid session.
	RedirectLogin
	// RedirectProfile means the session is valid but the principal has
	// not completed their profile yet.
	RedirectProfile
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectProfile:
		return "redirect_profile"
	default:
		return "unknown"
	}
}

// SessionChecker answers whether there is a valid session right now.
type SessionChecker interface {
	CheckAuth(ctx context.Context) (bool, error)
}

// ProfileChecker answers whether the principal completed a profile.
type ProfileChecker interface {
	HasProfile(ctx context.Context) (bool, error)
}

// Gate runs the session check and then the profile check. Both checks
// hit the backend on every Evaluate call; nothing is cached across
// navigations, so a revoked session is caught on the next mount.
type Gate struct {
	session SessionChecker
	profile ProfileChecker
}

func NewGate(session SessionChecker, profile ProfileChecker) *Gate {
	return &Gate{session: session, profile: profile}
}

// Evaluate resolves both checks into a single decision. An error from
// either check surfaces alongside RedirectLogin, the safe fallback.
func (g *Gate) Evaluate(ctx context.Context) (Decision, error) {
	authed, err := g.session.CheckAuth(ctx)
	if err != nil {
		return RedirectLogin, err
	}
	if !authed {
		return RedirectLogin, nil
	}

	hasProfile, err := g.profile.HasProfile(ctx)
	if err != nil {
		if err == ErrUnauthorized {
			// The session died between the two checks.
			return RedirectLogin, nil
		}
		return RedirectLogin, err
	}
	if !hasProfile {
		return RedirectProfile, nil
	}
	return Allow, nil
}
