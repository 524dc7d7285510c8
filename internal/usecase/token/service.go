package token

import (
	"context"
	"errors"
	"time"

	identity "identity/backend/internal/domain/identity"

	"github.com/google/uuid"
)

// DefaultTTL is the token lifetime applied when no override is configured.
const DefaultTTL = 24 * time.Hour

// Manager issues, reuses and revokes tokens. Expiry is evaluated lazily
// by timestamp comparison; there is no background sweep.
type Manager struct {
	tokens  identity.TokenRepository
	ttl     time.Duration
	nowFunc func() time.Time
}

// NewManager constructs a token manager. A non-positive ttl falls back
// to DefaultTTL.
func NewManager(tokens identity.TokenRepository, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		tokens:  tokens,
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

// GetOrCreate returns the live token for the exact (user, scope) pair,
// creating a fresh one when none exists or the existing token has
// expired. Superseded tokens are left in place; they stay retrievable
// but fail validation.
func (m *Manager) GetOrCreate(ctx context.Context, userID string, scope identity.Scope) (*identity.Token, error) {
	now := m.nowFunc().UTC()

	existing, err := m.tokens.GetForUser(ctx, userID, scope)
	switch {
	case err == nil:
		if !existing.ExpiresAt.Before(now) {
			return existing, nil
		}
	case !errors.Is(err, identity.ErrTokenNotFound):
		return nil, err
	}

	fresh := &identity.Token{
		ID:        uuid.NewString(),
		UserID:    userID,
		Scope:     scope,
		ExpiresAt: now.Add(m.ttl),
		CreatedAt: now,
	}
	if err := m.tokens.Create(ctx, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

// Revoke deletes the token. Returns ErrTokenNotFound when absent.
func (m *Manager) Revoke(ctx context.Context, id string) error {
	return m.tokens.Delete(ctx, id)
}

// Get is a pure read used by the authorization guard.
func (m *Manager) Get(ctx context.Context, id string) (*identity.Token, error) {
	return m.tokens.Get(ctx, id)
}
