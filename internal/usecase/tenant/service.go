package tenant

import (
	"context"
	"errors"
	"strings"
	"time"

	identity "identity/backend/internal/domain/identity"
	"identity/backend/internal/pagination"
)

// AccessGuard validates the caller's token.
type AccessGuard interface {
	Validate(ctx context.Context, tokenID, belongsTo string) (*identity.Token, *identity.User, error)
	ValidateAdmin(ctx context.Context, tokenID string) (*identity.Token, *identity.User, error)
}

// Service provides tenant administration use cases.
type Service struct {
	tenants identity.TenantRepository
	guard   AccessGuard
	nowFunc func() time.Time
}

// NewService constructs a tenant service.
func NewService(tenants identity.TenantRepository, guard AccessGuard) *Service {
	return &Service{
		tenants: tenants,
		guard:   guard,
		nowFunc: time.Now,
	}
}

// CreateInput defines the payload to create a tenant.
type CreateInput struct {
	ID          string
	Description string
	Enabled     bool
}

// UpdateInput defines partial tenant updates.
type UpdateInput struct {
	Description *string
	Enabled     *bool
}

// Create persists a new tenant under its caller-supplied unique id.
func (s *Service) Create(ctx context.Context, authToken string, input CreateInput) (*identity.Tenant, error) {
	if _, _, err := s.guard.ValidateAdmin(ctx, authToken); err != nil {
		return nil, err
	}

	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.New("tenant id is required")
	}

	now := s.nowFunc().UTC()
	tenant := &identity.Tenant{
		ID:          id,
		Description: strings.TrimSpace(input.Description),
		Enabled:     input.Enabled,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.tenants.Create(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

// Get retrieves a tenant by id.
func (s *Service) Get(ctx context.Context, authToken, id string) (*identity.Tenant, error) {
	if _, _, err := s.guard.ValidateAdmin(ctx, authToken); err != nil {
		return nil, err
	}
	return s.tenants.Get(ctx, id)
}

// Update applies partial changes to a tenant.
func (s *Service) Update(ctx context.Context, authToken, id string, input UpdateInput) (*identity.Tenant, error) {
	if _, _, err := s.guard.ValidateAdmin(ctx, authToken); err != nil {
		return nil, err
	}

	tenant, err := s.tenants.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Description != nil {
		tenant.Description = strings.TrimSpace(*input.Description)
	}
	if input.Enabled != nil {
		tenant.Enabled = *input.Enabled
	}
	tenant.UpdatedAt = s.nowFunc().UTC()

	if err := s.tenants.Update(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

// Delete removes an empty tenant. A tenant still owning users or grants
// is refused.
func (s *Service) Delete(ctx context.Context, authToken, id string) error {
	if _, _, err := s.guard.ValidateAdmin(ctx, authToken); err != nil {
		return err
	}

	if _, err := s.tenants.Get(ctx, id); err != nil {
		return err
	}
	empty, err := s.tenants.IsEmpty(ctx, id)
	if err != nil {
		return err
	}
	if !empty {
		return identity.ErrTenantNotEmpty
	}
	return s.tenants.Delete(ctx, id)
}

// List returns one page of tenants. Admin callers see every tenant;
// any other valid caller sees only the tenants they belong to.
func (s *Service) List(ctx context.Context, authToken string, marker *string, limit int) (pagination.Page[*identity.Tenant, string], error) {
	if _, _, err := s.guard.ValidateAdmin(ctx, authToken); err != nil {
		if !errors.Is(err, identity.ErrAdminRequired) {
			return pagination.Page[*identity.Tenant, string]{}, err
		}
		_, user, verr := s.guard.Validate(ctx, authToken, "")
		if verr != nil {
			return pagination.Page[*identity.Tenant, string]{}, verr
		}
		src := userTenants{repo: s.tenants, userID: user.ID}
		return pagination.Paginate(ctx, src, tenantID, marker, limit)
	}
	return pagination.Paginate[*identity.Tenant, string](ctx, s.tenants, tenantID, marker, limit)
}

func tenantID(t *identity.Tenant) string { return t.ID }

// userTenants restricts the pagination source to the tenants one user
// belongs to.
type userTenants struct {
	repo   identity.TenantRepository
	userID string
}

func (u userTenants) PageAfter(ctx context.Context, marker *string, limit int) ([]*identity.Tenant, error) {
	return u.repo.PageAfterForUser(ctx, u.userID, marker, limit)
}

func (u userTenants) PageBefore(ctx context.Context, marker *string, limit int) ([]*identity.Tenant, error) {
	return u.repo.PageBeforeForUser(ctx, u.userID, marker, limit)
}
