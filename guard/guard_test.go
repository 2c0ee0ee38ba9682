package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sstcp-ops/maintops-go/policy"
	"github.com/sstcp-ops/maintops-go/session"
	"github.com/sstcp-ops/maintops-go/storage"
	"github.com/sstcp-ops/maintops-go/types"
)

func newTestGuard(t *testing.T) (*Guard, *session.Store) {
	t.Helper()

	store := session.NewStore(session.Config{Storage: storage.NewMemory()})
	t.Cleanup(store.Close)

	g := New(Config{
		Policy:  policy.New(policy.VariantDesktop),
		Session: store,
		Rules: []RouteRule{
			{Name: "statistics", RequiresAuth: true, Permission: policy.PermViewStatistics},
			{Name: "personnel", RequiresAuth: true, Permission: policy.PermViewPersonnel},
			{Name: "workorders", RequiresAuth: true},
			{Name: "about", RequiresAuth: false},
		},
	})
	return g, store
}

func signIn(store *session.Store, role string) {
	store.SetUser(types.User{ID: 1, Name: "张三", Role: role})
	store.SetToken("T1")
}

func TestCheckUnregisteredRouteIsAllowed(t *testing.T) {
	g, _ := newTestGuard(t)

	decision := g.Check("dashboard")
	assert.True(t, decision.Allowed)
	assert.Empty(t, decision.RedirectTo)
}

func TestCheckRequiresAuthentication(t *testing.T) {
	g, store := newTestGuard(t)

	t.Run("signed out goes to login", func(t *testing.T) {
		decision := g.Check("workorders")
		assert.False(t, decision.Allowed)
		assert.Equal(t, "login", decision.RedirectTo)
	})

	t.Run("public route needs no session", func(t *testing.T) {
		assert.True(t, g.Check("about").Allowed)
	})

	t.Run("signed in passes", func(t *testing.T) {
		signIn(store, "employee")
		assert.True(t, g.Check("workorders").Allowed)
	})
}

func TestCheckPermission(t *testing.T) {
	g, store := newTestGuard(t)

	t.Run("denied role redirects to the default view", func(t *testing.T) {
		signIn(store, "employee")
		decision := g.Check("personnel")
		assert.False(t, decision.Allowed)
		assert.Equal(t, "home", decision.RedirectTo)
	})

	t.Run("allowed role passes", func(t *testing.T) {
		signIn(store, "department_manager")
		assert.True(t, g.Check("personnel").Allowed)
		assert.True(t, g.Check("statistics").Allowed)
	})

	t.Run("unknown role is denied", func(t *testing.T) {
		signIn(store, "intern")
		decision := g.Check("statistics")
		assert.False(t, decision.Allowed)
		assert.Equal(t, "home", decision.RedirectTo)
	})

	t.Run("token without user profile is denied permissioned routes", func(t *testing.T) {
		store.ClearUser()
		store.SetToken("T1")
		decision := g.Check("statistics")
		assert.False(t, decision.Allowed)
		assert.Equal(t, "home", decision.RedirectTo)
	})
}

func TestCustomRedirectTargets(t *testing.T) {
	store := session.NewStore(session.Config{Storage: storage.NewMemory()})
	t.Cleanup(store.Close)

	g := New(Config{
		Policy:       policy.New(policy.VariantMobile),
		Session:      store,
		LoginRoute:   "signin",
		DefaultRoute: "index",
		Rules: []RouteRule{
			{Name: "signature", RequiresAuth: true, Permission: policy.PermViewSignature},
		},
	})

	assert.Equal(t, "signin", g.Check("signature").RedirectTo)

	signIn(store, "material_manager")
	assert.Equal(t, "index", g.Check("signature").RedirectTo)

	signIn(store, "employee")
	assert.True(t, g.Check("signature").Allowed)
}
