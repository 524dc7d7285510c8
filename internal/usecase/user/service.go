package user

import (
	"context"
	"errors"
	"strings"
	"time"

	identity "identity/backend/internal/domain/identity"
	"identity/backend/internal/pagination"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AdminGuard gates every operation in this service.
type AdminGuard interface {
	ValidateAdmin(ctx context.Context, tokenID string) (*identity.Token, *identity.User, error)
}

// TenantGetter verifies referenced tenants exist.
type TenantGetter interface {
	Get(ctx context.Context, id string) (*identity.Tenant, error)
}

// Service provides user administration use cases.
type Service struct {
	users   identity.UserRepository
	tenants TenantGetter
	guard   AdminGuard
	nowFunc func() time.Time
}

// NewService constructs a user service.
func NewService(users identity.UserRepository, tenants TenantGetter, guard AdminGuard) *Service {
	return &Service{
		users:   users,
		tenants: tenants,
		guard:   guard,
		nowFunc: time.Now,
	}
}

// CreateInput defines the payload to create a user. Passwords arrive as
// one typed value here and are hashed unconditionally before the store
// ever sees them.
type CreateInput struct {
	ID       string
	Username string
	Email    string
	Password string
	Enabled  bool
	TenantID string
}

// UpdateInput defines partial user updates. The password moves through
// SetPassword only.
type UpdateInput struct {
	Email    *string
	Enabled  *bool
	TenantID *string
}

// Create persists a new user. The id may be caller-supplied; a fresh one
// is generated otherwise.
func (s *Service) Create(ctx context.Context, authToken string, input CreateInput) (*identity.User, error) {
	if _, _, err := s.guard.ValidateAdmin(ctx, authToken); err != nil {
		return nil, err
	}

	username := strings.TrimSpace(input.Username)
	password := strings.TrimSpace(input.Password)
	if username == "" {
		return nil, errors.New("username is required")
	}
	if password == "" {
		return nil, errors.New("password is required")
	}
	tenantID := strings.TrimSpace(input.TenantID)
	if tenantID != "" {
		if _, err := s.tenants.Get(ctx, tenantID); err != nil {
			return nil, err
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	id := strings.TrimSpace(input.ID)
	if id == "" {
		id = uuid.NewString()
	}
	now := s.nowFunc().UTC()
	user := &identity.User{
		ID:           id,
		Username:     username,
		Email:        strings.TrimSpace(strings.ToLower(input.Email)),
		PasswordHash: string(hashed),
		Enabled:      input.Enabled,
		TenantID:     tenantID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return sanitize(user), nil
}

// Get retrieves a user by id.
func (s *Service) Get(ctx context.Context, authToken, id string) (*identity.User, error) {
	if _, _, err := s.guard.ValidateAdmin(ctx, authToken); err != nil {
		return nil, err
	}
	user, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitize(user), nil
}

// Update applies partial changes to a user.
func (s *Service) Update(ctx context.Context, authToken, id string, input UpdateInput) (*identity.User, error) {
	if _, _, err := s.guard.ValidateAdmin(ctx, authToken); err != nil {
		return nil, err
	}

	user, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Email != nil {
		user.Email = strings.TrimSpace(strings.ToLower(*input.Email))
	}
	if input.Enabled != nil {
		user.Enabled = *input.Enabled
	}
	if input.TenantID != nil {
		tenantID := strings.TrimSpace(*input.TenantID)
		if tenantID != "" {
			if _, err := s.tenants.Get(ctx, tenantID); err != nil {
				return nil, err
			}
		}
		user.TenantID = tenantID
	}
	user.UpdatedAt = s.nowFunc().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return sanitize(user), nil
}

// SetEnabled flips the account's enabled flag.
func (s *Service) SetEnabled(ctx context.Context, authToken, id string, enabled bool) (*identity.User, error) {
	return s.Update(ctx, authToken, id, UpdateInput{Enabled: &enabled})
}

// SetPassword replaces the stored password hash.
func (s *Service) SetPassword(ctx context.Context, authToken, id, password string) error {
	if _, _, err := s.guard.ValidateAdmin(ctx, authToken); err != nil {
		return err
	}

	password = strings.TrimSpace(password)
	if password == "" {
		return errors.New("password is required")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, id, string(hashed), s.nowFunc().UTC())
}

// Delete removes a user by id.
func (s *Service) Delete(ctx context.Context, authToken, id string) error {
	if _, _, err := s.guard.ValidateAdmin(ctx, authToken); err != nil {
		return err
	}
	return s.users.Delete(ctx, id)
}

// List returns one page of users.
func (s *Service) List(ctx context.Context, authToken string, marker *string, limit int) (pagination.Page[*identity.User, string], error) {
	if _, _, err := s.guard.ValidateAdmin(ctx, authToken); err != nil {
		return pagination.Page[*identity.User, string]{}, err
	}
	page, err := pagination.Paginate[*identity.User, string](ctx, s.users, userID, marker, limit)
	if err != nil {
		return page, err
	}
	for i, u := range page.Items {
		page.Items[i] = sanitize(u)
	}
	return page, nil
}

func userID(u *identity.User) string { return u.ID }

func sanitize(u *identity.User) *identity.User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.PasswordHash = ""
	return &cp
}
