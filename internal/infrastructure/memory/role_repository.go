package memory

import (
	"context"

	identity "identity/backend/internal/domain/identity"
)

// RoleRepository stores roles in memory.
type RoleRepository struct {
	s *Store
}

// Create inserts a new role, rejecting duplicate ids.
func (r *RoleRepository) Create(_ context.Context, role *identity.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.roles[role.ID]; exists {
		return identity.ErrRoleExists
	}
	cp := *role
	r.s.roles[role.ID] = &cp
	return nil
}

// Get retrieves a role by id.
func (r *RoleRepository) Get(_ context.Context, id string) (*identity.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	role, ok := r.s.roles[id]
	if !ok {
		return nil, identity.ErrRoleNotFound
	}
	cp := *role
	return &cp, nil
}

// Delete removes a role by id.
func (r *RoleRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.roles[id]; !ok {
		return identity.ErrRoleNotFound
	}
	delete(r.s.roles, id)
	return nil
}

// PageAfter returns roles with ids strictly greater than marker, ascending.
func (r *RoleRepository) PageAfter(ctx context.Context, marker *string, limit int) ([]*identity.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return pageAfter(ctx, collect(r.s.roles), roleKey, nil, marker, limit)
}

// PageBefore returns roles with ids strictly less than marker, descending.
func (r *RoleRepository) PageBefore(ctx context.Context, marker *string, limit int) ([]*identity.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return pageBefore(ctx, collect(r.s.roles), roleKey, nil, marker, limit)
}

func roleKey(role *identity.Role) string { return role.ID }

// GrantRepository stores role grants in memory.
type GrantRepository struct {
	s *Store
}

// Create inserts a role grant.
func (r *GrantRepository) Create(_ context.Context, grant *identity.RoleGrant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cp := *grant
	r.s.grants[grant.ID] = &cp
	return nil
}

// Get retrieves a grant by id.
func (r *GrantRepository) Get(_ context.Context, id string) (*identity.RoleGrant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	g, ok := r.s.grants[id]
	if !ok {
		return nil, identity.ErrGrantNotFound
	}
	cp := *g
	return &cp, nil
}

// Delete removes a grant by id.
func (r *GrantRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.grants[id]; !ok {
		return identity.ErrGrantNotFound
	}
	delete(r.s.grants, id)
	return nil
}

// GlobalForUser returns the user's global grants only; tenant-scoped
// grants are distinct facts and never merged in.
func (r *GrantRepository) GlobalForUser(_ context.Context, userID string) ([]*identity.RoleGrant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*identity.RoleGrant
	for _, g := range r.s.grants {
		if g.UserID == userID && g.Scope.IsGlobal() {
			cp := *g
			out = append(out, &cp)
		}
	}
	return out, nil
}

// DeleteForUserInTenant removes every grant the user holds in one tenant
// under a single lock acquisition.
func (r *GrantRepository) DeleteForUserInTenant(_ context.Context, userID, tenantID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, g := range r.s.grants {
		if g.UserID != userID {
			continue
		}
		if scoped, ok := g.Scope.TenantID(); ok && scoped == tenantID {
			delete(r.s.grants, id)
		}
	}
	return nil
}

// PageAfterForUser returns the user's grants with ids strictly greater
// than marker, ascending.
func (r *GrantRepository) PageAfterForUser(ctx context.Context, userID string, marker *string, limit int) ([]*identity.RoleGrant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return pageAfter(ctx, collect(r.s.grants), grantKey, ownedBy(userID), marker, limit)
}

// PageBeforeForUser returns the user's grants with ids strictly less
// than marker, descending.
func (r *GrantRepository) PageBeforeForUser(ctx context.Context, userID string, marker *string, limit int) ([]*identity.RoleGrant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return pageBefore(ctx, collect(r.s.grants), grantKey, ownedBy(userID), marker, limit)
}

func grantKey(g *identity.RoleGrant) string { return g.ID }

func ownedBy(userID string) func(*identity.RoleGrant) bool {
	return func(g *identity.RoleGrant) bool { return g.UserID == userID }
}
