package memory

import (
	"context"

	identity "identity/backend/internal/domain/identity"
)

// TenantRepository stores tenants in memory.
type TenantRepository struct {
	s *Store
}

// Create inserts a new tenant, rejecting duplicate ids.
func (r *TenantRepository) Create(_ context.Context, tenant *identity.Tenant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.tenants[tenant.ID]; exists {
		return identity.ErrTenantExists
	}
	cp := *tenant
	r.s.tenants[tenant.ID] = &cp
	return nil
}

// Get retrieves a tenant by id.
func (r *TenantRepository) Get(_ context.Context, id string) (*identity.Tenant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tenants[id]
	if !ok {
		return nil, identity.ErrTenantNotFound
	}
	cp := *t
	return &cp, nil
}

// Update replaces the mutable fields of an existing tenant.
func (r *TenantRepository) Update(_ context.Context, tenant *identity.Tenant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.tenants[tenant.ID]
	if !ok {
		return identity.ErrTenantNotFound
	}
	cp := *tenant
	cp.CreatedAt = stored.CreatedAt
	r.s.tenants[tenant.ID] = &cp
	return nil
}

// Delete removes a tenant by id.
func (r *TenantRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tenants[id]; !ok {
		return identity.ErrTenantNotFound
	}
	delete(r.s.tenants, id)
	return nil
}

// IsEmpty reports whether no user defaults to the tenant and no grant is
// scoped to it.
func (r *TenantRepository) IsEmpty(_ context.Context, id string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.TenantID == id {
			return false, nil
		}
	}
	for _, g := range r.s.grants {
		if scoped, ok := g.Scope.TenantID(); ok && scoped == id {
			return false, nil
		}
	}
	return true, nil
}

// PageAfter returns tenants with ids strictly greater than marker, ascending.
func (r *TenantRepository) PageAfter(ctx context.Context, marker *string, limit int) ([]*identity.Tenant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return pageAfter(ctx, collect(r.s.tenants), tenantKey, nil, marker, limit)
}

// PageBefore returns tenants with ids strictly less than marker, descending.
func (r *TenantRepository) PageBefore(ctx context.Context, marker *string, limit int) ([]*identity.Tenant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return pageBefore(ctx, collect(r.s.tenants), tenantKey, nil, marker, limit)
}

// PageAfterForUser ranges ascending over the tenants the user belongs to.
func (r *TenantRepository) PageAfterForUser(ctx context.Context, userID string, marker *string, limit int) ([]*identity.Tenant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return pageAfter(ctx, collect(r.s.tenants), tenantKey, r.s.memberOf(userID), marker, limit)
}

// PageBeforeForUser ranges descending over the tenants the user belongs to.
func (r *TenantRepository) PageBeforeForUser(ctx context.Context, userID string, marker *string, limit int) ([]*identity.Tenant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return pageBefore(ctx, collect(r.s.tenants), tenantKey, r.s.memberOf(userID), marker, limit)
}

func tenantKey(t *identity.Tenant) string { return t.ID }

// memberOf builds the filter predicate selecting the tenants a user
// belongs to: the default tenant plus every tenant with a scoped grant.
// Callers must hold the store lock.
func (s *Store) memberOf(userID string) func(*identity.Tenant) bool {
	member := make(map[string]bool)
	if u, ok := s.users[userID]; ok && u.TenantID != "" {
		member[u.TenantID] = true
	}
	for _, g := range s.grants {
		if g.UserID != userID {
			continue
		}
		if scoped, ok := g.Scope.TenantID(); ok {
			member[scoped] = true
		}
	}
	return func(t *identity.Tenant) bool { return member[t.ID] }
}
