package postgres

import (
	"context"
	"errors"

	identity "identity/backend/internal/domain/identity"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EndpointRepository persists endpoint templates in PostgreSQL.
type EndpointRepository struct {
	pool *pgxpool.Pool
}

// NewEndpointRepository constructs a repository.
func NewEndpointRepository(pool *pgxpool.Pool) *EndpointRepository {
	return &EndpointRepository{pool: pool}
}

const endpointColumns = `id, region, service, public_url, admin_url, internal_url, enabled, is_global`

// Create inserts a new endpoint template record.
func (r *EndpointRepository) Create(ctx context.Context, tmpl *identity.EndpointTemplate) error {
	const query = `
INSERT INTO endpoint_templates (id, region, service, public_url, admin_url, internal_url, enabled, is_global)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`
	_, err := r.pool.Exec(ctx, query,
		tmpl.ID,
		tmpl.Region,
		tmpl.Service,
		tmpl.PublicURL,
		tmpl.AdminURL,
		tmpl.InternalURL,
		tmpl.Enabled,
		tmpl.Global,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return identity.ErrEndpointExists
		}
		return err
	}
	return nil
}

// Get retrieves an endpoint template by id.
func (r *EndpointRepository) Get(ctx context.Context, id string) (*identity.EndpointTemplate, error) {
	const query = `SELECT ` + endpointColumns + ` FROM endpoint_templates WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	tmpl, err := scanEndpoint(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrEndpointNotFound
		}
		return nil, err
	}
	return tmpl, nil
}

// Update modifies an existing endpoint template record.
func (r *EndpointRepository) Update(ctx context.Context, tmpl *identity.EndpointTemplate) error {
	const query = `
UPDATE endpoint_templates
SET region = $2, service = $3, public_url = $4, admin_url = $5, internal_url = $6, enabled = $7, is_global = $8
WHERE id = $1
`
	ct, err := r.pool.Exec(ctx, query,
		tmpl.ID,
		tmpl.Region,
		tmpl.Service,
		tmpl.PublicURL,
		tmpl.AdminURL,
		tmpl.InternalURL,
		tmpl.Enabled,
		tmpl.Global,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return identity.ErrEndpointNotFound
	}
	return nil
}

// Delete removes an endpoint template by id.
func (r *EndpointRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM endpoint_templates WHERE id = $1`
	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return identity.ErrEndpointNotFound
	}
	return nil
}

// PageAfter returns templates with ids strictly greater than marker, ascending.
func (r *EndpointRepository) PageAfter(ctx context.Context, marker *string, limit int) ([]*identity.EndpointTemplate, error) {
	if marker == nil {
		const query = `SELECT ` + endpointColumns + ` FROM endpoint_templates ORDER BY id ASC LIMIT $1`
		return r.many(ctx, query, limit)
	}
	const query = `SELECT ` + endpointColumns + ` FROM endpoint_templates WHERE id > $1 ORDER BY id ASC LIMIT $2`
	return r.many(ctx, query, *marker, limit)
}

// PageBefore returns templates with ids strictly less than marker, descending.
func (r *EndpointRepository) PageBefore(ctx context.Context, marker *string, limit int) ([]*identity.EndpointTemplate, error) {
	if marker == nil {
		const query = `SELECT ` + endpointColumns + ` FROM endpoint_templates ORDER BY id DESC LIMIT $1`
		return r.many(ctx, query, limit)
	}
	const query = `SELECT ` + endpointColumns + ` FROM endpoint_templates WHERE id < $1 ORDER BY id DESC LIMIT $2`
	return r.many(ctx, query, *marker, limit)
}

func (r *EndpointRepository) many(ctx context.Context, query string, args ...any) ([]*identity.EndpointTemplate, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*identity.EndpointTemplate
	for rows.Next() {
		t, err := scanEndpoint(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func scanEndpoint(row pgx.Row) (*identity.EndpointTemplate, error) {
	var t identity.EndpointTemplate
	err := row.Scan(
		&t.ID,
		&t.Region,
		&t.Service,
		&t.PublicURL,
		&t.AdminURL,
		&t.InternalURL,
		&t.Enabled,
		&t.Global,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
