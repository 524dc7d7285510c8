package auth

import (
	"context"
	"testing"
	"time"

	identity "identity/backend/internal/domain/identity"
	"identity/backend/internal/infrastructure/memory"
	tokenusecase "identity/backend/internal/usecase/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	svc   *Service
	store *memory.Store
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	manager := tokenusecase.NewManager(store.Tokens(), tokenusecase.DefaultTTL)
	return &fixture{
		svc:   NewService(store.Users(), manager),
		store: store,
		now:   time.Now().UTC(),
	}
}

func (f *fixture) addUser(t *testing.T, id, username, password, tenantID string, enabled bool) *identity.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &identity.User{
		ID:           id,
		Username:     username,
		PasswordHash: string(hashed),
		Enabled:      enabled,
		TenantID:     tenantID,
		CreatedAt:    f.now,
		UpdatedAt:    f.now,
	}
	require.NoError(t, f.store.Users().Create(context.Background(), user))
	return user
}

func TestAuthenticateIssuesToken(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "alice", "secret", "acme", true)

	result, err := f.svc.Authenticate(context.Background(), "alice", "secret", "")
	require.NoError(t, err)

	assert.Equal(t, "u1", result.User.ID)
	assert.Equal(t, "acme", result.EffectiveTenant)
	assert.True(t, result.Token.Scope.IsGlobal())
	assert.WithinDuration(t, time.Now().UTC().Add(24*time.Hour), result.Token.ExpiresAt, time.Minute)
}

func TestAuthenticateReusesToken(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "alice", "secret", "", true)

	first, err := f.svc.Authenticate(context.Background(), "alice", "secret", "")
	require.NoError(t, err)
	second, err := f.svc.Authenticate(context.Background(), "alice", "secret", "")
	require.NoError(t, err)
	assert.Equal(t, first.Token.ID, second.Token.ID)
}

func TestAuthenticateMissingCredentials(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Authenticate(context.Background(), "", "secret", "")
	assert.ErrorIs(t, err, identity.ErrMissingCredentials)
	_, err = f.svc.Authenticate(context.Background(), "alice", "", "")
	assert.ErrorIs(t, err, identity.ErrMissingCredentials)
}

func TestAuthenticateUnknownUserAndWrongPasswordMatch(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "alice", "secret", "", true)

	_, unknownErr := f.svc.Authenticate(context.Background(), "nobody", "secret", "")
	_, wrongErr := f.svc.Authenticate(context.Background(), "alice", "wrong", "")

	assert.ErrorIs(t, unknownErr, identity.ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, identity.ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestAuthenticateDisabledUser(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "alice", "secret", "", false)

	_, err := f.svc.Authenticate(context.Background(), "alice", "secret", "")
	assert.ErrorIs(t, err, identity.ErrUserDisabled)
}

func TestAuthenticateTenantByMembership(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "alice", "secret", "acme", true)

	result, err := f.svc.Authenticate(context.Background(), "alice", "secret", "acme")
	require.NoError(t, err)

	scoped, ok := result.Token.Scope.TenantID()
	require.True(t, ok)
	assert.Equal(t, "acme", scoped)
	assert.Equal(t, "acme", result.EffectiveTenant)
}

func TestAuthenticateTenantByGrant(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(t, "u1", "alice", "secret", "", true)
	require.NoError(t, f.store.Grants().Create(context.Background(), &identity.RoleGrant{
		ID:     "g1",
		RoleID: "Member",
		UserID: user.ID,
		Scope:  identity.TenantScope("beta"),
	}))

	result, err := f.svc.Authenticate(context.Background(), "alice", "secret", "beta")
	require.NoError(t, err)
	assert.Equal(t, "beta", result.EffectiveTenant)
}

func TestAuthenticateTenantWithoutAccess(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "alice", "secret", "acme", true)

	_, err := f.svc.Authenticate(context.Background(), "alice", "secret", "other")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
}
