package guard

import (
	"context"
	"testing"
	"time"

	identity "identity/backend/internal/domain/identity"
	"identity/backend/internal/infrastructure/memory"
	tokenusecase "identity/backend/internal/usecase/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	guard  *Guard
	tokens *tokenusecase.Manager
	store  *memory.Store
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	manager := tokenusecase.NewManager(store.Tokens(), tokenusecase.DefaultTTL)
	g := New(manager, store.Users(), store.Tenants(), store.Grants(), "Admin")
	f := &fixture{
		guard:  g,
		tokens: manager,
		store:  store,
		now:    time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	g.nowFunc = func() time.Time { return f.now }
	return f
}

func (f *fixture) addTenant(t *testing.T, id string, enabled bool) {
	t.Helper()
	require.NoError(t, f.store.Tenants().Create(context.Background(), &identity.Tenant{
		ID:      id,
		Enabled: enabled,
	}))
}

func (f *fixture) addUser(t *testing.T, id, tenantID string, enabled bool) {
	t.Helper()
	require.NoError(t, f.store.Users().Create(context.Background(), &identity.User{
		ID:       id,
		Username: id,
		Enabled:  enabled,
		TenantID: tenantID,
	}))
}

func (f *fixture) issue(t *testing.T, userID string, scope identity.Scope, expiresAt time.Time) *identity.Token {
	t.Helper()
	tok := &identity.Token{
		ID:        userID + "-" + scope.String(),
		UserID:    userID,
		Scope:     scope,
		ExpiresAt: expiresAt,
		CreatedAt: f.now,
	}
	require.NoError(t, f.store.Tokens().Create(context.Background(), tok))
	return tok
}

func TestValidateHappyPath(t *testing.T) {
	f := newFixture(t)
	f.addTenant(t, "acme", true)
	f.addUser(t, "u1", "acme", true)
	tok := f.issue(t, "u1", identity.TenantScope("acme"), f.now.Add(time.Hour))

	got, user, err := f.guard.Validate(context.Background(), tok.ID, "")
	require.NoError(t, err)
	assert.Equal(t, tok.ID, got.ID)
	assert.Equal(t, "u1", user.ID)
}

func TestValidateUnknownToken(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.guard.Validate(context.Background(), "nope", "")
	assert.ErrorIs(t, err, identity.ErrTokenNotFound)
}

func TestValidateExpiredToken(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "", true)
	tok := f.issue(t, "u1", identity.GlobalScope(), f.now.Add(-time.Minute))

	_, _, err := f.guard.Validate(context.Background(), tok.ID, "")
	assert.ErrorIs(t, err, identity.ErrTokenExpired)

	// Expiry is evaluated lazily; the token itself is not removed.
	_, getErr := f.tokens.Get(context.Background(), tok.ID)
	assert.NoError(t, getErr)
}

func TestValidateDisabledUser(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "", false)
	tok := f.issue(t, "u1", identity.GlobalScope(), f.now.Add(time.Hour))

	_, _, err := f.guard.Validate(context.Background(), tok.ID, "")
	assert.ErrorIs(t, err, identity.ErrUserDisabled)
}

func TestValidateDisabledDefaultTenant(t *testing.T) {
	f := newFixture(t)
	f.addTenant(t, "acme", false)
	f.addUser(t, "u1", "acme", true)
	tok := f.issue(t, "u1", identity.GlobalScope(), f.now.Add(time.Hour))

	_, _, err := f.guard.Validate(context.Background(), tok.ID, "")
	assert.ErrorIs(t, err, identity.ErrTenantDisabled)
}

func TestValidateDisabledScopeTenant(t *testing.T) {
	f := newFixture(t)
	f.addTenant(t, "acme", true)
	f.addTenant(t, "beta", false)
	f.addUser(t, "u1", "acme", true)
	tok := f.issue(t, "u1", identity.TenantScope("beta"), f.now.Add(time.Hour))

	_, _, err := f.guard.Validate(context.Background(), tok.ID, "")
	assert.ErrorIs(t, err, identity.ErrTenantDisabled)
}

func TestValidateBelongsTo(t *testing.T) {
	f := newFixture(t)
	f.addTenant(t, "acme", true)
	f.addUser(t, "u1", "", true)
	scoped := f.issue(t, "u1", identity.TenantScope("acme"), f.now.Add(time.Hour))
	global := f.issue(t, "u1", identity.GlobalScope(), f.now.Add(time.Hour))

	_, _, err := f.guard.Validate(context.Background(), scoped.ID, "acme")
	assert.NoError(t, err)

	_, _, err = f.guard.Validate(context.Background(), scoped.ID, "other")
	assert.ErrorIs(t, err, identity.ErrScopeMismatch)

	// A globally scoped token never satisfies a tenant constraint.
	_, _, err = f.guard.Validate(context.Background(), global.ID, "acme")
	assert.ErrorIs(t, err, identity.ErrScopeMismatch)
}

func TestValidateAdminRequiresGlobalGrant(t *testing.T) {
	f := newFixture(t)
	f.addTenant(t, "acme", true)
	f.addUser(t, "admin", "", true)
	f.addUser(t, "u1", "", true)
	adminTok := f.issue(t, "admin", identity.GlobalScope(), f.now.Add(time.Hour))
	userTok := f.issue(t, "u1", identity.GlobalScope(), f.now.Add(time.Hour))

	require.NoError(t, f.store.Grants().Create(context.Background(), &identity.RoleGrant{
		ID:     "g1",
		RoleID: "Admin",
		UserID: "admin",
		Scope:  identity.GlobalScope(),
	}))
	// An admin role scoped to one tenant does not confer global
	// administration.
	require.NoError(t, f.store.Grants().Create(context.Background(), &identity.RoleGrant{
		ID:     "g2",
		RoleID: "Admin",
		UserID: "u1",
		Scope:  identity.TenantScope("acme"),
	}))

	_, user, err := f.guard.ValidateAdmin(context.Background(), adminTok.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin", user.ID)

	_, _, err = f.guard.ValidateAdmin(context.Background(), userTok.ID)
	assert.ErrorIs(t, err, identity.ErrAdminRequired)
}

func TestValidateAdminIgnoresOtherRoles(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "", true)
	tok := f.issue(t, "u1", identity.GlobalScope(), f.now.Add(time.Hour))

	require.NoError(t, f.store.Grants().Create(context.Background(), &identity.RoleGrant{
		ID:     "g1",
		RoleID: "Member",
		UserID: "u1",
		Scope:  identity.GlobalScope(),
	}))

	_, _, err := f.guard.ValidateAdmin(context.Background(), tok.ID)
	assert.ErrorIs(t, err, identity.ErrAdminRequired)
}
