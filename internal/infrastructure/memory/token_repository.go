package memory

import (
	"context"

	identity "identity/backend/internal/domain/identity"
)

// TokenRepository stores tokens in memory.
type TokenRepository struct {
	s *Store
}

// Create inserts a token.
func (r *TokenRepository) Create(_ context.Context, token *identity.Token) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cp := *token
	r.s.tokens[token.ID] = &cp
	return nil
}

// Get retrieves a token by id.
func (r *TokenRepository) Get(_ context.Context, id string) (*identity.Token, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tokens[id]
	if !ok {
		return nil, identity.ErrTokenNotFound
	}
	cp := *t
	return &cp, nil
}

// GetForUser returns the latest-expiring token for the exact
// (user, scope) pair.
func (r *TokenRepository) GetForUser(_ context.Context, userID string, scope identity.Scope) (*identity.Token, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var latest *identity.Token
	for _, t := range r.s.tokens {
		if t.UserID != userID || t.Scope != scope {
			continue
		}
		if latest == nil || t.ExpiresAt.After(latest.ExpiresAt) {
			latest = t
		}
	}
	if latest == nil {
		return nil, identity.ErrTokenNotFound
	}
	cp := *latest
	return &cp, nil
}

// Delete removes a token by id.
func (r *TokenRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tokens[id]; !ok {
		return identity.ErrTokenNotFound
	}
	delete(r.s.tokens, id)
	return nil
}
