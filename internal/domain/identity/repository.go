package identity

import (
	"context"
	"time"
)

// The Page* methods below share one contract: PageAfter returns up to
// limit entities with ids strictly greater than marker in ascending id
// order, PageBefore returns up to limit entities with ids strictly less
// than marker in descending id order, and a nil marker means no bound.

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Get(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	// GetByTenant locates a user constrained to a tenant: either the
	// tenant is the user's default tenant or a role grant scoped to the
	// tenant exists for the user.
	GetByTenant(ctx context.Context, username, tenantID string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
	PageAfter(ctx context.Context, marker *string, limit int) ([]*User, error)
	PageBefore(ctx context.Context, marker *string, limit int) ([]*User, error)
}

// TenantRepository defines persistence operations for tenants.
type TenantRepository interface {
	Create(ctx context.Context, tenant *Tenant) error
	Get(ctx context.Context, id string) (*Tenant, error)
	Update(ctx context.Context, tenant *Tenant) error
	Delete(ctx context.Context, id string) error
	// IsEmpty reports whether no user defaults to the tenant and no
	// grant is scoped to it.
	IsEmpty(ctx context.Context, id string) (bool, error)
	PageAfter(ctx context.Context, marker *string, limit int) ([]*Tenant, error)
	PageBefore(ctx context.Context, marker *string, limit int) ([]*Tenant, error)
	// PageAfterForUser and PageBeforeForUser range over the tenants a
	// user belongs to: the default tenant plus every tenant the user
	// holds a scoped grant in.
	PageAfterForUser(ctx context.Context, userID string, marker *string, limit int) ([]*Tenant, error)
	PageBeforeForUser(ctx context.Context, userID string, marker *string, limit int) ([]*Tenant, error)
}

// TokenRepository defines persistence operations for tokens.
type TokenRepository interface {
	Create(ctx context.Context, token *Token) error
	Get(ctx context.Context, id string) (*Token, error)
	// GetForUser returns the latest-expiring token for the exact
	// (user, scope) pair, or ErrTokenNotFound.
	GetForUser(ctx context.Context, userID string, scope Scope) (*Token, error)
	Delete(ctx context.Context, id string) error
}

// RoleRepository defines persistence operations for roles.
type RoleRepository interface {
	Create(ctx context.Context, role *Role) error
	Get(ctx context.Context, id string) (*Role, error)
	Delete(ctx context.Context, id string) error
	PageAfter(ctx context.Context, marker *string, limit int) ([]*Role, error)
	PageBefore(ctx context.Context, marker *string, limit int) ([]*Role, error)
}

// GrantRepository defines persistence operations for role grants.
type GrantRepository interface {
	Create(ctx context.Context, grant *RoleGrant) error
	Get(ctx context.Context, id string) (*RoleGrant, error)
	Delete(ctx context.Context, id string) error
	// GlobalForUser returns the user's global (not tenant-scoped) grants.
	GlobalForUser(ctx context.Context, userID string) ([]*RoleGrant, error)
	// DeleteForUserInTenant removes every grant the user holds in one
	// tenant as a single atomic unit.
	DeleteForUserInTenant(ctx context.Context, userID, tenantID string) error
	PageAfterForUser(ctx context.Context, userID string, marker *string, limit int) ([]*RoleGrant, error)
	PageBeforeForUser(ctx context.Context, userID string, marker *string, limit int) ([]*RoleGrant, error)
}

// EndpointRepository defines persistence operations for endpoint templates.
type EndpointRepository interface {
	Create(ctx context.Context, tmpl *EndpointTemplate) error
	Get(ctx context.Context, id string) (*EndpointTemplate, error)
	Update(ctx context.Context, tmpl *EndpointTemplate) error
	Delete(ctx context.Context, id string) error
	PageAfter(ctx context.Context, marker *string, limit int) ([]*EndpointTemplate, error)
	PageBefore(ctx context.Context, marker *string, limit int) ([]*EndpointTemplate, error)
}
