package authclient

// Snapshot is the immutable session view a guard decision is made against.
type Snapshot struct {
	Authenticated bool
	Role          string
}

// Intent is one navigation attempt: the target path plus the access
// metadata declared on the target route. Built per attempt, consumed once.
type Intent struct {
	Path         string
	RequiresAuth bool
	RequiredRole string
	// Query holds the target's query parameters (first value per key).
	Query map[string]string
}

// Decision is the guard's verdict on an intent.
type Decision struct {
	Allowed      bool
	RedirectPath string
}

// Allow lets the navigation proceed.
func Allow() Decision { return Decision{Allowed: true} }

// RedirectTo sends the navigation elsewhere.
func RedirectTo(path string) Decision { return Decision{RedirectPath: path} }

// GuardConfig is the policy knobs of a Guard.
type GuardConfig struct {
	// HomePath is the root path that redirects authenticated users to
	// their dashboard. Default "/".
	HomePath string
	// LoginPath and SignupPath are the auth pages authenticated users are
	// bounced away from. Defaults "/login" and "/signup".
	LoginPath  string
	SignupPath string
	// SignupRoleParam names the query parameter that lets an authenticated
	// user re-enter the signup page anyway (partner registration starts a
	// second account with an explicit role). Default "role"; empty
	// disables the override.
	SignupRoleParam string
}

// DefaultGuardConfig returns the standard guard policy.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		HomePath:        "/",
		LoginPath:       "/login",
		SignupPath:      "/signup",
		SignupRoleParam: "role",
	}
}

// Guard decides whether a navigation intent is allowed for a session. It is
// pure: no side effects, no fetching, same decision for the same inputs.
type Guard struct {
	config GuardConfig
}

// NewGuard creates a Guard with the default policy.
func NewGuard() *Guard {
	return NewGuardWithConfig(DefaultGuardConfig())
}

// NewGuardWithConfig creates a Guard with a custom policy. Zero-valued
// fields fall back to the defaults.
func NewGuardWithConfig(config GuardConfig) *Guard {
	defaults := DefaultGuardConfig()
	if config.HomePath == "" {
		config.HomePath = defaults.HomePath
	}
	if config.LoginPath == "" {
		config.LoginPath = defaults.LoginPath
	}
	if config.SignupPath == "" {
		config.SignupPath = defaults.SignupPath
	}
	return &Guard{config: config}
}

// DashboardPath maps a role to its landing page.
func DashboardPath(role string) string {
	if role == "admin" {
		return "/admin/profile"
	}
	return "/" + role + "/home"
}

// Evaluate applies the access rules in order; the first match wins.
//
// The caller must have run SessionManager.Initialize before the first
// evaluation, otherwise an authenticated user looks anonymous and gets
// bounced to login.
func (g *Guard) Evaluate(intent Intent, session Snapshot) Decision {
	// Authenticated users landing on the root go to their dashboard.
	if intent.Path == g.config.HomePath && session.Authenticated {
		return RedirectTo(DashboardPath(session.Role))
	}

	// Protected routes require a session.
	if intent.RequiresAuth && !session.Authenticated {
		return RedirectTo(g.config.LoginPath)
	}

	// Wrong role: send the user to their own dashboard.
	if intent.RequiresAuth && session.Authenticated &&
		intent.RequiredRole != "" && intent.RequiredRole != session.Role {
		return RedirectTo(DashboardPath(session.Role))
	}

	// Auth pages bounce authenticated users, unless the signup override
	// parameter is present.
	if (intent.Path == g.config.LoginPath || intent.Path == g.config.SignupPath) &&
		session.Authenticated && !g.overrideRequested(intent) {
		return RedirectTo(DashboardPath(session.Role))
	}

	return Allow()
}

func (g *Guard) overrideRequested(intent Intent) bool {
	if g.config.SignupRoleParam == "" {
		return false
	}
	return intent.Query[g.config.SignupRoleParam] != ""
}
