package memory

import (
	"context"
	"time"

	identity "identity/backend/internal/domain/identity"
)

// UserRepository stores users in memory.
type UserRepository struct {
	s *Store
}

// Create inserts a new user, rejecting duplicate ids and usernames.
func (r *UserRepository) Create(_ context.Context, user *identity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.users[user.ID]; exists {
		return identity.ErrUserExists
	}
	for _, existing := range r.s.users {
		if existing.Username == user.Username {
			return identity.ErrUserExists
		}
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

// Get retrieves a user by id.
func (r *UserRepository) Get(_ context.Context, id string) (*identity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.userByID(id)
}

// GetByUsername retrieves a user by username.
func (r *UserRepository) GetByUsername(_ context.Context, username string) (*identity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, identity.ErrUserNotFound
}

// GetByTenant locates a user constrained to a tenant, via direct
// membership or a grant scoped to the tenant.
func (r *UserRepository) GetByTenant(_ context.Context, username, tenantID string) (*identity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Username != username {
			continue
		}
		if u.TenantID == tenantID {
			cp := *u
			return &cp, nil
		}
		for _, g := range r.s.grants {
			if g.UserID != u.ID {
				continue
			}
			if scoped, ok := g.Scope.TenantID(); ok && scoped == tenantID {
				cp := *u
				return &cp, nil
			}
		}
		break
	}
	return nil, identity.ErrUserNotFound
}

// Update replaces the mutable fields of an existing user.
func (r *UserRepository) Update(_ context.Context, user *identity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.users[user.ID]
	if !ok {
		return identity.ErrUserNotFound
	}
	cp := *user
	cp.PasswordHash = stored.PasswordHash
	cp.CreatedAt = stored.CreatedAt
	r.s.users[user.ID] = &cp
	return nil
}

// UpdatePassword stores a new password hash.
func (r *UserRepository) UpdatePassword(_ context.Context, id, passwordHash string, updatedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.users[id]
	if !ok {
		return identity.ErrUserNotFound
	}
	stored.PasswordHash = passwordHash
	stored.UpdatedAt = updatedAt
	return nil
}

// Delete removes a user by id.
func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return identity.ErrUserNotFound
	}
	delete(r.s.users, id)
	return nil
}

// PageAfter returns users with ids strictly greater than marker, ascending.
func (r *UserRepository) PageAfter(ctx context.Context, marker *string, limit int) ([]*identity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return pageAfter(ctx, collect(r.s.users), userKey, nil, marker, limit)
}

// PageBefore returns users with ids strictly less than marker, descending.
func (r *UserRepository) PageBefore(ctx context.Context, marker *string, limit int) ([]*identity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return pageBefore(ctx, collect(r.s.users), userKey, nil, marker, limit)
}

func userKey(u *identity.User) string { return u.ID }

func (s *Store) userByID(id string) (*identity.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}
