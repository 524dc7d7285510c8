package identity

import "errors"

var (
	// ErrMissingCredentials indicates a login attempt without a username
	// or password.
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrInvalidCredentials indicates a login failure. The same fault is
	// returned for an unknown user, a user outside the requested tenant
	// and a wrong password, so callers cannot probe account existence.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserDisabled means the account exists but has been disabled.
	ErrUserDisabled = errors.New("user account has been disabled")
	// ErrTenantDisabled means a tenant required by the request is disabled.
	ErrTenantDisabled = errors.New("tenant has been disabled")
	// ErrTokenNotFound means the supplied token id is unknown.
	ErrTokenNotFound = errors.New("bad token, please reauthenticate")
	// ErrTokenExpired means the token exists but its expiry has passed.
	ErrTokenExpired = errors.New("token expired, please renew")
	// ErrScopeMismatch means the token is not scoped to the required tenant.
	ErrScopeMismatch = errors.New("unauthorized on this tenant")
	// ErrAdminRequired means the caller holds no global grant of the
	// admin role.
	ErrAdminRequired = errors.New("you are not authorized to make this call")

	// ErrUserNotFound indicates a missing user.
	ErrUserNotFound = errors.New("user not found")
	// ErrTenantNotFound indicates a missing tenant.
	ErrTenantNotFound = errors.New("tenant not found")
	// ErrRoleNotFound indicates a missing role.
	ErrRoleNotFound = errors.New("role not found")
	// ErrGrantNotFound indicates a missing role grant.
	ErrGrantNotFound = errors.New("role grant not found")
	// ErrEndpointNotFound indicates a missing endpoint template.
	ErrEndpointNotFound = errors.New("endpoint template not found")

	// ErrUserExists signals a duplicate user id or username on create.
	ErrUserExists = errors.New("a user with that id or username already exists")
	// ErrTenantExists signals a duplicate tenant id on create.
	ErrTenantExists = errors.New("a tenant with that id already exists")
	// ErrRoleExists signals a duplicate role id on create.
	ErrRoleExists = errors.New("a role with that id already exists")
	// ErrEndpointExists signals a duplicate endpoint template id on create.
	ErrEndpointExists = errors.New("an endpoint template with that id already exists")

	// ErrTenantNotEmpty rejects deletion of a tenant that still owns
	// users or grants.
	ErrTenantNotEmpty = errors.New("tenant still owns users or role grants")
)
