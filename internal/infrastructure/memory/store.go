// Package memory provides a mutex-guarded in-memory implementation of
// the identity repositories, suitable for tests and local development.
package memory

import (
	"context"
	"sync"

	identity "identity/backend/internal/domain/identity"
	"identity/backend/internal/pagination"
)

// Store holds every entity map behind one lock. Repository views share
// the store, so cross-entity checks (tenant emptiness, grant-based user
// lookup) see a consistent snapshot.
type Store struct {
	mu        sync.RWMutex
	users     map[string]*identity.User
	tenants   map[string]*identity.Tenant
	tokens    map[string]*identity.Token
	roles     map[string]*identity.Role
	grants    map[string]*identity.RoleGrant
	endpoints map[string]*identity.EndpointTemplate
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:     make(map[string]*identity.User),
		tenants:   make(map[string]*identity.Tenant),
		tokens:    make(map[string]*identity.Token),
		roles:     make(map[string]*identity.Role),
		grants:    make(map[string]*identity.RoleGrant),
		endpoints: make(map[string]*identity.EndpointTemplate),
	}
}

// Users returns the user repository view.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Tenants returns the tenant repository view.
func (s *Store) Tenants() *TenantRepository { return &TenantRepository{s: s} }

// Tokens returns the token repository view.
func (s *Store) Tokens() *TokenRepository { return &TokenRepository{s: s} }

// Roles returns the role repository view.
func (s *Store) Roles() *RoleRepository { return &RoleRepository{s: s} }

// Grants returns the role-grant repository view.
func (s *Store) Grants() *GrantRepository { return &GrantRepository{s: s} }

// Endpoints returns the endpoint-template repository view.
func (s *Store) Endpoints() *EndpointRepository { return &EndpointRepository{s: s} }

func pageAfter[T any](ctx context.Context, items []T, key func(T) string, match func(T) bool, marker *string, limit int) ([]T, error) {
	return pagination.NewSliceSource(items, key, match).PageAfter(ctx, marker, limit)
}

func pageBefore[T any](ctx context.Context, items []T, key func(T) string, match func(T) bool, marker *string, limit int) ([]T, error) {
	return pagination.NewSliceSource(items, key, match).PageBefore(ctx, marker, limit)
}

func collect[T any](m map[string]*T) []*T {
	out := make([]*T, 0, len(m))
	for _, v := range m {
		cp := *v
		out = append(out, &cp)
	}
	return out
}
