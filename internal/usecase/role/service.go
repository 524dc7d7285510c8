package role

import (
	"context"
	"errors"
	"strings"

	identity "identity/backend/internal/domain/identity"
	"identity/backend/internal/pagination"

	"github.com/google/uuid"
)

// AdminGuard gates every operation in this service.
type AdminGuard interface {
	ValidateAdmin(ctx context.Context, tokenID string) (*identity.Token, *identity.User, error)
}

// UserGetter verifies grant targets exist.
type UserGetter interface {
	Get(ctx context.Context, id string) (*identity.User, error)
}

// TenantGetter verifies grant scopes exist.
type TenantGetter interface {
	Get(ctx context.Context, id string) (*identity.Tenant, error)
}

// Service provides role and role-grant administration use cases.
type Service struct {
	roles   identity.RoleRepository
	grants  identity.GrantRepository
	users   UserGetter
	tenants TenantGetter
	guard   AdminGuard
}

// NewService constructs a role service.
func NewService(roles identity.RoleRepository, grants identity.GrantRepository, users UserGetter, tenants TenantGetter, guard AdminGuard) *Service {
	return &Service{
		roles:   roles,
		grants:  grants,
		users:   users,
		tenants: tenants,
		guard:   guard,
	}
}

// Create persists a new role under its caller-supplied unique id.
func (s *Service) Create(ctx context.Context, authToken, id, description string) (*identity.Role, error) {
	if _, _, err := s.guard.ValidateAdmin(ctx, authToken); err != nil {
		return nil, err
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("role id is required")
	}
	role := &identity.Role{ID: id, Description: strings.TrimSpace(description)}
	if err := s.roles.Create(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// Get retrieves a role by id.
func (s *Service) Get(ctx context.Context, authToken, id string) (*identity.Role, error) {
	if _, _, err := s.guard.ValidateAdmin(ctx, authToken); err != nil {
		return nil, err
	}
	return s.roles.Get(ctx, id)
}

// Delete removes a role by id.
func (s *Service) Delete(ctx context.Context, authToken, id string) error {
	if _, _, err := s.guard.ValidateAdmin(ctx, authToken); err != nil {
		return err
	}
	return s.roles.Delete(ctx, id)
}

// List returns one page of roles.
func (s *Service) List(ctx context.Context, authToken string, marker *string, limit int) (pagination.Page[*identity.Role, string], error) {
	if _, _, err := s.guard.ValidateAdmin(ctx, authToken); err != nil {
		return pagination.Page[*identity.Role, string]{}, err
	}
	return pagination.Paginate[*identity.Role, string](ctx, s.roles, roleID, marker, limit)
}

// Grant assigns a role to a user, globally when tenantID is empty or
// scoped to one tenant otherwise. The two forms are distinct grants.
func (s *Service) Grant(ctx context.Context, authToken, userID, roleID, tenantID string) (*identity.RoleGrant, error) {
	if _, _, err := s.guard.ValidateAdmin(ctx, authToken); err != nil {
		return nil, err
	}

	if _, err := s.users.Get(ctx, userID); err != nil {
		return nil, err
	}
	roleID = strings.TrimSpace(roleID)
	if roleID == "" {
		return nil, errors.New("role id is required")
	}
	if _, err := s.roles.Get(ctx, roleID); err != nil {
		return nil, err
	}

	scope := identity.GlobalScope()
	if tenantID = strings.TrimSpace(tenantID); tenantID != "" {
		if _, err := s.tenants.Get(ctx, tenantID); err != nil {
			return nil, err
		}
		scope = identity.TenantScope(tenantID)
	}

	grant := &identity.RoleGrant{
		ID:     uuid.NewString(),
		RoleID: roleID,
		UserID: userID,
		Scope:  scope,
	}
	if err := s.grants.Create(ctx, grant); err != nil {
		return nil, err
	}
	return grant, nil
}

// Revoke deletes a single grant by id.
func (s *Service) Revoke(ctx context.Context, authToken, grantID string) error {
	if _, _, err := s.guard.ValidateAdmin(ctx, authToken); err != nil {
		return err
	}
	return s.grants.Delete(ctx, grantID)
}

// RevokeTenantGrants deletes every grant a user holds in one tenant as a
// single atomic unit at the store.
func (s *Service) RevokeTenantGrants(ctx context.Context, authToken, userID, tenantID string) error {
	if _, _, err := s.guard.ValidateAdmin(ctx, authToken); err != nil {
		return err
	}
	if _, err := s.users.Get(ctx, userID); err != nil {
		return err
	}
	if _, err := s.tenants.Get(ctx, tenantID); err != nil {
		return err
	}
	return s.grants.DeleteForUserInTenant(ctx, userID, tenantID)
}

// ListGrants returns one page of a user's grants.
func (s *Service) ListGrants(ctx context.Context, authToken, userID string, marker *string, limit int) (pagination.Page[*identity.RoleGrant, string], error) {
	if _, _, err := s.guard.ValidateAdmin(ctx, authToken); err != nil {
		return pagination.Page[*identity.RoleGrant, string]{}, err
	}
	if _, err := s.users.Get(ctx, userID); err != nil {
		return pagination.Page[*identity.RoleGrant, string]{}, err
	}
	src := userGrants{repo: s.grants, userID: userID}
	return pagination.Paginate(ctx, src, grantID, marker, limit)
}

func roleID(r *identity.Role) string       { return r.ID }
func grantID(g *identity.RoleGrant) string { return g.ID }

// userGrants restricts the pagination source to one user's grants.
type userGrants struct {
	repo   identity.GrantRepository
	userID string
}

func (u userGrants) PageAfter(ctx context.Context, marker *string, limit int) ([]*identity.RoleGrant, error) {
	return u.repo.PageAfterForUser(ctx, u.userID, marker, limit)
}

func (u userGrants) PageBefore(ctx context.Context, marker *string, limit int) ([]*identity.RoleGrant, error) {
	return u.repo.PageBeforeForUser(ctx, u.userID, marker, limit)
}
