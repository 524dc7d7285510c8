package token

import (
	"context"
	"testing"
	"time"

	identity "identity/backend/internal/domain/identity"
	"identity/backend/internal/infrastructure/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManagerAt(t *testing.T, now time.Time) (*Manager, *time.Time) {
	t.Helper()
	current := now
	m := NewManager(memory.NewStore().Tokens(), DefaultTTL)
	m.nowFunc = func() time.Time { return current }
	return m, &current
}

func TestGetOrCreateReusesLiveToken(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m, _ := newManagerAt(t, now)
	ctx := context.Background()
	scope := identity.TenantScope("acme")

	first, err := m.GetOrCreate(ctx, "u1", scope)
	require.NoError(t, err)
	assert.Equal(t, now.Add(DefaultTTL), first.ExpiresAt)

	second, err := m.GetOrCreate(ctx, "u1", scope)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.ExpiresAt, second.ExpiresAt)
}

func TestGetOrCreateScopesAreDistinct(t *testing.T) {
	m, _ := newManagerAt(t, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	global, err := m.GetOrCreate(ctx, "u1", identity.GlobalScope())
	require.NoError(t, err)
	scoped, err := m.GetOrCreate(ctx, "u1", identity.TenantScope("acme"))
	require.NoError(t, err)

	assert.NotEqual(t, global.ID, scoped.ID)
}

func TestGetOrCreateSupersedesExpiredToken(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m, current := newManagerAt(t, now)
	ctx := context.Background()
	scope := identity.GlobalScope()

	first, err := m.GetOrCreate(ctx, "u1", scope)
	require.NoError(t, err)

	*current = now.Add(DefaultTTL + time.Minute)
	second, err := m.GetOrCreate(ctx, "u1", scope)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, current.Add(DefaultTTL), second.ExpiresAt)

	// The superseded token is not deleted; it stays readable.
	old, err := m.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ExpiresAt, old.ExpiresAt)
}

func TestRevoke(t *testing.T) {
	m, _ := newManagerAt(t, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	tok, err := m.GetOrCreate(ctx, "u1", identity.GlobalScope())
	require.NoError(t, err)

	require.NoError(t, m.Revoke(ctx, tok.ID))
	_, err = m.Get(ctx, tok.ID)
	assert.ErrorIs(t, err, identity.ErrTokenNotFound)

	assert.ErrorIs(t, m.Revoke(ctx, tok.ID), identity.ErrTokenNotFound)
}
