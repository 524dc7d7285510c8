package postgres

import (
	"context"
	"errors"

	identity "identity/backend/internal/domain/identity"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TenantRepository persists tenants in PostgreSQL.
type TenantRepository struct {
	pool *pgxpool.Pool
}

// NewTenantRepository constructs a repository.
func NewTenantRepository(pool *pgxpool.Pool) *TenantRepository {
	return &TenantRepository{pool: pool}
}

const tenantColumns = `id, description, enabled, created_at, updated_at`

// memberTenants selects the tenants one user belongs to: the default
// tenant plus every tenant the user holds a scoped grant in.
const memberTenants = `
SELECT DISTINCT t.id, t.description, t.enabled, t.created_at, t.updated_at
FROM tenants t
WHERE t.id IN (SELECT tenant_id FROM users WHERE id = $1 AND tenant_id IS NOT NULL
               UNION
               SELECT tenant_id FROM role_grants WHERE user_id = $1 AND tenant_id IS NOT NULL)
`

// Create inserts a new tenant record.
func (r *TenantRepository) Create(ctx context.Context, tenant *identity.Tenant) error {
	const query = `
INSERT INTO tenants (id, description, enabled, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
`
	_, err := r.pool.Exec(ctx, query,
		tenant.ID,
		tenant.Description,
		tenant.Enabled,
		tenant.CreatedAt,
		tenant.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return identity.ErrTenantExists
		}
		return err
	}
	return nil
}

// Get retrieves a tenant by id.
func (r *TenantRepository) Get(ctx context.Context, id string) (*identity.Tenant, error) {
	const query = `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	tenant, err := scanTenant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrTenantNotFound
		}
		return nil, err
	}
	return tenant, nil
}

// Update modifies an existing tenant record.
func (r *TenantRepository) Update(ctx context.Context, tenant *identity.Tenant) error {
	const query = `
UPDATE tenants
SET description = $2, enabled = $3, updated_at = $4
WHERE id = $1
`
	ct, err := r.pool.Exec(ctx, query,
		tenant.ID,
		tenant.Description,
		tenant.Enabled,
		tenant.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return identity.ErrTenantNotFound
	}
	return nil
}

// Delete removes a tenant by id.
func (r *TenantRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tenants WHERE id = $1`
	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return identity.ErrTenantNotFound
	}
	return nil
}

// IsEmpty reports whether no user defaults to the tenant and no grant is
// scoped to it.
func (r *TenantRepository) IsEmpty(ctx context.Context, id string) (bool, error) {
	const query = `
SELECT NOT EXISTS (SELECT 1 FROM users WHERE tenant_id = $1)
   AND NOT EXISTS (SELECT 1 FROM role_grants WHERE tenant_id = $1)
`
	var empty bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&empty); err != nil {
		return false, err
	}
	return empty, nil
}

// PageAfter returns tenants with ids strictly greater than marker, ascending.
func (r *TenantRepository) PageAfter(ctx context.Context, marker *string, limit int) ([]*identity.Tenant, error) {
	if marker == nil {
		const query = `SELECT ` + tenantColumns + ` FROM tenants ORDER BY id ASC LIMIT $1`
		return r.many(ctx, query, limit)
	}
	const query = `SELECT ` + tenantColumns + ` FROM tenants WHERE id > $1 ORDER BY id ASC LIMIT $2`
	return r.many(ctx, query, *marker, limit)
}

// PageBefore returns tenants with ids strictly less than marker, descending.
func (r *TenantRepository) PageBefore(ctx context.Context, marker *string, limit int) ([]*identity.Tenant, error) {
	if marker == nil {
		const query = `SELECT ` + tenantColumns + ` FROM tenants ORDER BY id DESC LIMIT $1`
		return r.many(ctx, query, limit)
	}
	const query = `SELECT ` + tenantColumns + ` FROM tenants WHERE id < $1 ORDER BY id DESC LIMIT $2`
	return r.many(ctx, query, *marker, limit)
}

// PageAfterForUser ranges ascending over the tenants the user belongs to.
func (r *TenantRepository) PageAfterForUser(ctx context.Context, userID string, marker *string, limit int) ([]*identity.Tenant, error) {
	if marker == nil {
		const query = memberTenants + ` ORDER BY id ASC LIMIT $2`
		return r.many(ctx, query, userID, limit)
	}
	const query = memberTenants + ` AND t.id > $2 ORDER BY id ASC LIMIT $3`
	return r.many(ctx, query, userID, *marker, limit)
}

// PageBeforeForUser ranges descending over the tenants the user belongs to.
func (r *TenantRepository) PageBeforeForUser(ctx context.Context, userID string, marker *string, limit int) ([]*identity.Tenant, error) {
	if marker == nil {
		const query = memberTenants + ` ORDER BY id DESC LIMIT $2`
		return r.many(ctx, query, userID, limit)
	}
	const query = memberTenants + ` AND t.id < $2 ORDER BY id DESC LIMIT $3`
	return r.many(ctx, query, userID, *marker, limit)
}

func (r *TenantRepository) many(ctx context.Context, query string, args ...any) ([]*identity.Tenant, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []*identity.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

func scanTenant(row pgx.Row) (*identity.Tenant, error) {
	var t identity.Tenant
	err := row.Scan(
		&t.ID,
		&t.Description,
		&t.Enabled,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
