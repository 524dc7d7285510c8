package auth

import (
	"context"
	"errors"
	"strings"

	identity "identity/backend/internal/domain/identity"

	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer abstracts token issuance and reuse.
type TokenIssuer interface {
	GetOrCreate(ctx context.Context, userID string, scope identity.Scope) (*identity.Token, error)
}

// Service validates credentials and hands successful logins to the
// token manager.
type Service struct {
	users  identity.UserRepository
	tokens TokenIssuer
}

// NewService constructs a credential validator.
func NewService(users identity.UserRepository, tokens TokenIssuer) *Service {
	return &Service{users: users, tokens: tokens}
}

// Result carries a successful authentication outcome.
type Result struct {
	Token *identity.Token
	User  *identity.User
	// EffectiveTenant is the requested tenant when one was given,
	// otherwise the user's default tenant. Empty when neither exists.
	EffectiveTenant string
}

// Authenticate resolves the user, checks the account state and password
// in that order, and issues (or reuses) a token.
//
// With no tenant requested the user is located by username alone; with a
// tenant requested the lookup is constrained to that tenant, via direct
// membership or an existing grant scoped to it. Both unknown-user cases
// and a wrong password report the same credential fault.
func (s *Service) Authenticate(ctx context.Context, username, password, tenantID string) (*Result, error) {
	username = strings.TrimSpace(username)
	tenantID = strings.TrimSpace(tenantID)
	if username == "" || password == "" {
		return nil, identity.ErrMissingCredentials
	}

	var (
		user *identity.User
		err  error
	)
	if tenantID == "" {
		user, err = s.users.GetByUsername(ctx, username)
	} else {
		user, err = s.users.GetByTenant(ctx, username, tenantID)
	}
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return nil, identity.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.Enabled {
		return nil, identity.ErrUserDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, identity.ErrInvalidCredentials
	}

	scope := identity.GlobalScope()
	if tenantID != "" {
		scope = identity.TenantScope(tenantID)
	}

	tok, err := s.tokens.GetOrCreate(ctx, user.ID, scope)
	if err != nil {
		return nil, err
	}

	effective := tenantID
	if effective == "" {
		effective = user.TenantID
	}
	return &Result{Token: tok, User: user, EffectiveTenant: effective}, nil
}
