package identity

import "time"

// User is an authenticatable account. The id is immutable; every other
// field changes only through explicit update operations.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Enabled      bool
	// TenantID is the user's default tenant. Empty means no default tenant.
	TenantID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Tenant is the isolation boundary owning users and endpoint configuration.
type Tenant struct {
	ID          string
	Description string
	Enabled     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Token is an opaque credential issued by a successful authentication.
// Its expiry is fixed at creation and never extended; superseded tokens
// are not deleted.
type Token struct {
	ID        string
	UserID    string
	Scope     Scope
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Role is an authorization role that can be granted to users.
type Role struct {
	ID          string
	Description string
}

// RoleGrant assigns a role to a user, either globally or within one
// tenant. A tenant-scoped grant and a global grant of the same role are
// distinct authorization facts.
type RoleGrant struct {
	ID     string
	RoleID string
	UserID string
	Scope  Scope
}

// EndpointTemplate describes a service endpoint that tenants can be
// pointed at.
type EndpointTemplate struct {
	ID          string
	Region      string
	Service     string
	PublicURL   string
	AdminURL    string
	InternalURL string
	Enabled     bool
	Global      bool
}
