package postgres

import (
	"context"
	"errors"

	identity "identity/backend/internal/domain/identity"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RoleRepository persists roles in PostgreSQL.
type RoleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository constructs a repository.
func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

// Create inserts a new role record.
func (r *RoleRepository) Create(ctx context.Context, role *identity.Role) error {
	const query = `INSERT INTO roles (id, description) VALUES ($1, $2)`
	_, err := r.pool.Exec(ctx, query, role.ID, role.Description)
	if err != nil {
		if isUniqueViolation(err) {
			return identity.ErrRoleExists
		}
		return err
	}
	return nil
}

// Get retrieves a role by id.
func (r *RoleRepository) Get(ctx context.Context, id string) (*identity.Role, error) {
	const query = `SELECT id, description FROM roles WHERE id = $1`
	var role identity.Role
	if err := r.pool.QueryRow(ctx, query, id).Scan(&role.ID, &role.Description); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrRoleNotFound
		}
		return nil, err
	}
	return &role, nil
}

// Delete removes a role by id.
func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM roles WHERE id = $1`
	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return identity.ErrRoleNotFound
	}
	return nil
}

// PageAfter returns roles with ids strictly greater than marker, ascending.
func (r *RoleRepository) PageAfter(ctx context.Context, marker *string, limit int) ([]*identity.Role, error) {
	if marker == nil {
		const query = `SELECT id, description FROM roles ORDER BY id ASC LIMIT $1`
		return r.many(ctx, query, limit)
	}
	const query = `SELECT id, description FROM roles WHERE id > $1 ORDER BY id ASC LIMIT $2`
	return r.many(ctx, query, *marker, limit)
}

// PageBefore returns roles with ids strictly less than marker, descending.
func (r *RoleRepository) PageBefore(ctx context.Context, marker *string, limit int) ([]*identity.Role, error) {
	if marker == nil {
		const query = `SELECT id, description FROM roles ORDER BY id DESC LIMIT $1`
		return r.many(ctx, query, limit)
	}
	const query = `SELECT id, description FROM roles WHERE id < $1 ORDER BY id DESC LIMIT $2`
	return r.many(ctx, query, *marker, limit)
}

func (r *RoleRepository) many(ctx context.Context, query string, args ...any) ([]*identity.Role, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []*identity.Role
	for rows.Next() {
		var role identity.Role
		if err := rows.Scan(&role.ID, &role.Description); err != nil {
			return nil, err
		}
		roles = append(roles, &role)
	}
	return roles, rows.Err()
}

// GrantRepository persists role grants in PostgreSQL.
type GrantRepository struct {
	pool *pgxpool.Pool
}

// NewGrantRepository constructs a repository.
func NewGrantRepository(pool *pgxpool.Pool) *GrantRepository {
	return &GrantRepository{pool: pool}
}

const grantColumns = `id, role_id, user_id, tenant_id`

// Create inserts a role grant record.
func (r *GrantRepository) Create(ctx context.Context, grant *identity.RoleGrant) error {
	const query = `
INSERT INTO role_grants (id, role_id, user_id, tenant_id)
VALUES ($1, $2, $3, $4)
`
	_, err := r.pool.Exec(ctx, query,
		grant.ID,
		grant.RoleID,
		grant.UserID,
		scopeColumn(grant.Scope),
	)
	return err
}

// Get retrieves a grant by id.
func (r *GrantRepository) Get(ctx context.Context, id string) (*identity.RoleGrant, error) {
	const query = `SELECT ` + grantColumns + ` FROM role_grants WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	grant, err := scanGrant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrGrantNotFound
		}
		return nil, err
	}
	return grant, nil
}

// Delete removes a grant by id.
func (r *GrantRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM role_grants WHERE id = $1`
	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return identity.ErrGrantNotFound
	}
	return nil
}

// GlobalForUser returns the user's global grants only.
func (r *GrantRepository) GlobalForUser(ctx context.Context, userID string) ([]*identity.RoleGrant, error) {
	const query = `SELECT ` + grantColumns + ` FROM role_grants WHERE user_id = $1 AND tenant_id IS NULL`
	return r.many(ctx, query, userID)
}

// DeleteForUserInTenant removes every grant the user holds in one tenant
// inside a single transaction.
func (r *GrantRepository) DeleteForUserInTenant(ctx context.Context, userID, tenantID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const query = `DELETE FROM role_grants WHERE user_id = $1 AND tenant_id = $2`
	if _, err := tx.Exec(ctx, query, userID, tenantID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// PageAfterForUser returns the user's grants with ids strictly greater
// than marker, ascending.
func (r *GrantRepository) PageAfterForUser(ctx context.Context, userID string, marker *string, limit int) ([]*identity.RoleGrant, error) {
	if marker == nil {
		const query = `SELECT ` + grantColumns + ` FROM role_grants WHERE user_id = $1 ORDER BY id ASC LIMIT $2`
		return r.many(ctx, query, userID, limit)
	}
	const query = `SELECT ` + grantColumns + ` FROM role_grants WHERE user_id = $1 AND id > $2 ORDER BY id ASC LIMIT $3`
	return r.many(ctx, query, userID, *marker, limit)
}

// PageBeforeForUser returns the user's grants with ids strictly less
// than marker, descending.
func (r *GrantRepository) PageBeforeForUser(ctx context.Context, userID string, marker *string, limit int) ([]*identity.RoleGrant, error) {
	if marker == nil {
		const query = `SELECT ` + grantColumns + ` FROM role_grants WHERE user_id = $1 ORDER BY id DESC LIMIT $2`
		return r.many(ctx, query, userID, limit)
	}
	const query = `SELECT ` + grantColumns + ` FROM role_grants WHERE user_id = $1 AND id < $2 ORDER BY id DESC LIMIT $3`
	return r.many(ctx, query, userID, *marker, limit)
}

func (r *GrantRepository) many(ctx context.Context, query string, args ...any) ([]*identity.RoleGrant, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []*identity.RoleGrant
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

func scanGrant(row pgx.Row) (*identity.RoleGrant, error) {
	var (
		g        identity.RoleGrant
		tenantID *string
	)
	if err := row.Scan(&g.ID, &g.RoleID, &g.UserID, &tenantID); err != nil {
		return nil, err
	}
	g.Scope = columnScope(tenantID)
	return &g, nil
}
