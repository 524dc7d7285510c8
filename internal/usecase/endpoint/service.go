package endpoint

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

// Service provides endpoint-template administration use cases.
type Service struct {
	endpoints identity.EndpointRepository
	guard     AdminGuard
}

// NewService constructs an endpoint service.
func NewService(endpoints identity.EndpointRepository, guard AdminGuard) *Service {
	return &Service{endpoints: endpoints, guard: guard}
}

// Input defines the payload to create or update an endpoint template.
type Input struct {
	Region      string
	Service     string
	PublicURL   string
	AdminURL    string
	InternalURL string
	Enabled     bool
	Global      bool
}

// Create persists a new endpoint template.
func (s *Service) Create(ctx context.Context, authToken string, input Input) (*identity.EndpointTemplate, error) {
	if _, _, err := s.guard.ValidateAdmin(ctx, authToken); err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Service) == "" {
		return nil, errors.New("service name is required")
	}
	tmpl := &identity.EndpointTemplate{
		ID:          uuid.NewString(),
		Region:      strings.TrimSpace(input.Region),
		Service:     strings.TrimSpace(input.Service),
		PublicURL:   strings.TrimSpace(input.PublicURL),
		AdminURL:    strings.TrimSpace(input.AdminURL),
		InternalURL: strings.TrimSpace(input.InternalURL),
		Enabled:     input.Enabled,
		Global:      input.Global,
	}
	if err := s.endpoints.Create(ctx, tmpl); err != nil {
		return nil, err
	}
	return tmpl, nil
}

// Get retrieves an endpoint template by id.
func (s *Service) Get(ctx context.Context, authToken, id string) (*identity.EndpointTemplate, error) {
	if _, _, err := s.guard.ValidateAdmin(ctx, authToken); err != nil {
		return nil, err
	}
	return s.endpoints.Get(ctx, id)
}

// Update replaces the template's fields.
func (s *Service) Update(ctx context.Context, authToken, id string, input Input) (*identity.EndpointTemplate, error) {
	if _, _, err := s.guard.ValidateAdmin(ctx, authToken); err != nil {
		return nil, err
	}

	tmpl, err := s.endpoints.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	tmpl.Region = strings.TrimSpace(input.Region)
	tmpl.Service = strings.TrimSpace(input.Service)
	tmpl.PublicURL = strings.TrimSpace(input.PublicURL)
	tmpl.AdminURL = strings.TrimSpace(input.AdminURL)
	tmpl.InternalURL = strings.TrimSpace(input.InternalURL)
	tmpl.Enabled = input.Enabled
	tmpl.Global = input.Global

	if err := s.endpoints.Update(ctx, tmpl); err != nil {
		return nil, err
	}
	return tmpl, nil
}

// Delete removes an endpoint template by id.
func (s *Service) Delete(ctx context.Context, authToken, id string) error {
	if _, _, err := s.guard.ValidateAdmin(ctx, authToken); err != nil {
		return err
	}
	return s.endpoints.Delete(ctx, id)
}

// List returns one page of endpoint templates.
func (s *Service) List(ctx context.Context, authToken string, marker *string, limit int) (pagination.Page[*identity.EndpointTemplate, string], error) {
	if _, _, err := s.guard.ValidateAdmin(ctx, authToken); err != nil {
		return pagination.Page[*identity.EndpointTemplate, string]{}, err
	}
	return pagination.Paginate[*identity.EndpointTemplate, string](ctx, s.endpoints, templateID, marker, limit)
}

func templateID(t *identity.EndpointTemplate) string { return t.ID }
