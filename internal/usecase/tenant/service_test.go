package tenant

import (
	"context"
	"testing"
	"time"

	identity "identity/backend/internal/domain/identity"
	"identity/backend/internal/infrastructure/memory"
	guardusecase "identity/backend/internal/usecase/guard"
	tokenusecase "identity/backend/internal/usecase/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc   *Service
	store *memory.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	manager := tokenusecase.NewManager(store.Tokens(), tokenusecase.DefaultTTL)
	guard := guardusecase.New(manager, store.Users(), store.Tenants(), store.Grants(), "Admin")
	return &fixture{
		svc:   NewService(store.Tenants(), guard),
		store: store,
	}
}

func (f *fixture) addUser(t *testing.T, id, tenantID string) {
	t.Helper()
	require.NoError(t, f.store.Users().Create(context.Background(), &identity.User{
		ID:       id,
		Username: id,
		Enabled:  true,
		TenantID: tenantID,
	}))
}

func (f *fixture) issueToken(t *testing.T, userID string) string {
	t.Helper()
	tok := &identity.Token{
		ID:        userID + "-token",
		UserID:    userID,
		Scope:     identity.GlobalScope(),
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	require.NoError(t, f.store.Tokens().Create(context.Background(), tok))
	return tok.ID
}

func (f *fixture) makeAdmin(t *testing.T, userID string) {
	t.Helper()
	require.NoError(t, f.store.Grants().Create(context.Background(), &identity.RoleGrant{
		ID:     userID + "-admin",
		RoleID: "Admin",
		UserID: userID,
		Scope:  identity.GlobalScope(),
	}))
}

func TestCreateRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "")
	token := f.issueToken(t, "u1")

	_, err := f.svc.Create(context.Background(), token, CreateInput{ID: "acme", Enabled: true})
	assert.ErrorIs(t, err, identity.ErrAdminRequired)
}

func TestCreateAndGet(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "admin", "")
	f.makeAdmin(t, "admin")
	token := f.issueToken(t, "admin")
	ctx := context.Background()

	created, err := f.svc.Create(ctx, token, CreateInput{ID: "acme", Description: "Acme Corp", Enabled: true})
	require.NoError(t, err)
	assert.Equal(t, "acme", created.ID)

	got, err := f.svc.Get(ctx, token, "acme")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", got.Description)
}

func TestDeleteRefusesNonEmptyTenant(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "admin", "")
	f.makeAdmin(t, "admin")
	token := f.issueToken(t, "admin")
	ctx := context.Background()

	_, err := f.svc.Create(ctx, token, CreateInput{ID: "acme", Enabled: true})
	require.NoError(t, err)
	f.addUser(t, "u1", "acme")

	assert.ErrorIs(t, f.svc.Delete(ctx, token, "acme"), identity.ErrTenantNotEmpty)

	require.NoError(t, f.store.Users().Delete(ctx, "u1"))
	assert.NoError(t, f.svc.Delete(ctx, token, "acme"))
}

func TestListAdminSeesAllTenants(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "admin", "")
	f.makeAdmin(t, "admin")
	token := f.issueToken(t, "admin")
	ctx := context.Background()

	for _, id := range []string{"alpha", "beta", "gamma"} {
		_, err := f.svc.Create(ctx, token, CreateInput{ID: id, Enabled: true})
		require.NoError(t, err)
	}

	page, err := f.svc.List(ctx, token, nil, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Nil(t, page.Next)
}

func TestListMemberSeesOwnTenantsOnly(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "admin", "")
	f.makeAdmin(t, "admin")
	adminToken := f.issueToken(t, "admin")
	ctx := context.Background()

	for _, id := range []string{"alpha", "beta", "gamma"} {
		_, err := f.svc.Create(ctx, adminToken, CreateInput{ID: id, Enabled: true})
		require.NoError(t, err)
	}

	f.addUser(t, "u1", "alpha")
	require.NoError(t, f.store.Grants().Create(ctx, &identity.RoleGrant{
		ID:     "g1",
		RoleID: "Member",
		UserID: "u1",
		Scope:  identity.TenantScope("gamma"),
	}))
	memberToken := f.issueToken(t, "u1")

	page, err := f.svc.List(ctx, memberToken, nil, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "alpha", page.Items[0].ID)
	assert.Equal(t, "gamma", page.Items[1].ID)
}

func TestListInvalidLimit(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "admin", "")
	f.makeAdmin(t, "admin")
	token := f.issueToken(t, "admin")

	_, err := f.svc.List(context.Background(), token, nil, 0)
	assert.Error(t, err)
}
