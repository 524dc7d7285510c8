package memory

import (
	"context"

	identity "identity/backend/internal/domain/identity"
)

// EndpointRepository stores endpoint templates in memory.
type EndpointRepository struct {
	s *Store
}

// Create inserts a new endpoint template, rejecting duplicate ids.
func (r *EndpointRepository) Create(_ context.Context, tmpl *identity.EndpointTemplate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.endpoints[tmpl.ID]; exists {
		return identity.ErrEndpointExists
	}
	cp := *tmpl
	r.s.endpoints[tmpl.ID] = &cp
	return nil
}

// Get retrieves an endpoint template by id.
func (r *EndpointRepository) Get(_ context.Context, id string) (*identity.EndpointTemplate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.endpoints[id]
	if !ok {
		return nil, identity.ErrEndpointNotFound
	}
	cp := *t
	return &cp, nil
}

// Update replaces an existing endpoint template.
func (r *EndpointRepository) Update(_ context.Context, tmpl *identity.EndpointTemplate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.endpoints[tmpl.ID]; !ok {
		return identity.ErrEndpointNotFound
	}
	cp := *tmpl
	r.s.endpoints[tmpl.ID] = &cp
	return nil
}

// Delete removes an endpoint template by id.
func (r *EndpointRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.endpoints[id]; !ok {
		return identity.ErrEndpointNotFound
	}
	delete(r.s.endpoints, id)
	return nil
}

// PageAfter returns templates with ids strictly greater than marker, ascending.
func (r *EndpointRepository) PageAfter(ctx context.Context, marker *string, limit int) ([]*identity.EndpointTemplate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return pageAfter(ctx, collect(r.s.endpoints), endpointKey, nil, marker, limit)
}

// PageBefore returns templates with ids strictly less than marker, descending.
func (r *EndpointRepository) PageBefore(ctx context.Context, marker *string, limit int) ([]*identity.EndpointTemplate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return pageBefore(ctx, collect(r.s.endpoints), endpointKey, nil, marker, limit)
}

func endpointKey(t *identity.EndpointTemplate) string { return t.ID }
