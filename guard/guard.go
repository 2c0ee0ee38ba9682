// Package guard gates navigation to permission-tagged views. Checks are
// synchronous against an already-hydrated session store; a denial is a
// redirect decision, never an error.
package guard

import (
	"github.com/sstcp-ops/maintops-go/policy"
	"github.com/sstcp-ops/maintops-go/session"
)

// RouteRule describes one guarded route.
type RouteRule struct {
	Name         string
	RequiresAuth bool
	Permission   policy.PermissionID // empty means no permission check
}

// Decision is the outcome of a guard check.
type Decision struct {
	Allowed    bool
	RedirectTo string // destination route when not allowed
}

// Guard consults the permission policy before allowing navigation.
type Guard struct {
	policy       *policy.Policy
	session      *session.Store
	rules        map[string]RouteRule
	loginRoute   string
	defaultRoute string
}

// Config configures a Guard.
type Config struct {
	Policy       *policy.Policy
	Session      *session.Store
	Rules        []RouteRule
	LoginRoute   string // redirect target when authentication is missing
	DefaultRoute string // redirect target when permission is denied
}

// New builds a Guard from a static route table.
func New(cfg Config) *Guard {
	if cfg.LoginRoute == "" {
		cfg.LoginRoute = "login"
	}
	if cfg.DefaultRoute == "" {
		cfg.DefaultRoute = "home"
	}
	g := &Guard{
		policy:       cfg.Policy,
		session:      cfg.Session,
		rules:        make(map[string]RouteRule, len(cfg.Rules)),
		loginRoute:   cfg.LoginRoute,
		defaultRoute: cfg.DefaultRoute,
	}
	for _, rule := range cfg.Rules {
		g.rules[rule.Name] = rule
	}
	return g
}

// Check decides whether navigation to the named route may proceed. Routes
// with no registered rule are allowed; denials silently redirect to the
// safe default view.
func (g *Guard) Check(routeName string) Decision {
	rule, ok := g.rules[routeName]
	if !ok {
		return Decision{Allowed: true}
	}

	if rule.RequiresAuth && !g.session.IsLoggedIn() {
		return Decision{Allowed: false, RedirectTo: g.loginRoute}
	}

	if rule.Permission != "" {
		role := g.currentRole()
		if !g.policy.HasPermission(role, rule.Permission) {
			return Decision{Allowed: false, RedirectTo: g.defaultRoute}
		}
	}
	return Decision{Allowed: true}
}

func (g *Guard) currentRole() policy.Role {
	user := g.session.User()
	if user == nil {
		return ""
	}
	return policy.Role(user.Role)
}
