package postgres

import (
	"context"
	"errors"
	"time"

	identity "identity/backend/internal/domain/identity"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository persists users in PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository constructs a repository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, username, email, password_hash, enabled, tenant_id, created_at, updated_at`

// Create inserts a new user record.
func (r *UserRepository) Create(ctx context.Context, user *identity.User) error {
	const query = `
INSERT INTO users (id, username, email, password_hash, enabled, tenant_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Enabled,
		nullable(user.TenantID),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return identity.ErrUserExists
		}
		return err
	}
	return nil
}

// Get retrieves a user by id.
func (r *UserRepository) Get(ctx context.Context, id string) (*identity.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.one(ctx, query, id)
}

// GetByUsername fetches a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*identity.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.one(ctx, query, username)
}

// GetByTenant locates a user constrained to a tenant, either through the
// default-tenant membership or through a grant scoped to that tenant.
func (r *UserRepository) GetByTenant(ctx context.Context, username, tenantID string) (*identity.User, error) {
	const query = `
SELECT ` + userColumns + ` FROM users u
WHERE u.username = $1
  AND (u.tenant_id = $2
       OR EXISTS (SELECT 1 FROM role_grants g
                  WHERE g.user_id = u.id AND g.tenant_id = $2))
`
	return r.one(ctx, query, username, tenantID)
}

// Update modifies an existing user record.
func (r *UserRepository) Update(ctx context.Context, user *identity.User) error {
	const query = `
UPDATE users
SET username = $2, email = $3, enabled = $4, tenant_id = $5, updated_at = $6
WHERE id = $1
`
	ct, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.Enabled,
		nullable(user.TenantID),
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return identity.ErrUserExists
		}
		return err
	}
	if ct.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

// UpdatePassword updates the stored password hash for a user.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	const query = `
UPDATE users
SET password_hash = $2, updated_at = $3
WHERE id = $1
`
	ct, err := r.pool.Exec(ctx, query, id, passwordHash, updatedAt)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

// Delete removes a user by id.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM users WHERE id = $1`
	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

// PageAfter returns users with ids strictly greater than marker, ascending.
func (r *UserRepository) PageAfter(ctx context.Context, marker *string, limit int) ([]*identity.User, error) {
	if marker == nil {
		const query = `SELECT ` + userColumns + ` FROM users ORDER BY id ASC LIMIT $1`
		return r.many(ctx, query, limit)
	}
	const query = `SELECT ` + userColumns + ` FROM users WHERE id > $1 ORDER BY id ASC LIMIT $2`
	return r.many(ctx, query, *marker, limit)
}

// PageBefore returns users with ids strictly less than marker, descending.
func (r *UserRepository) PageBefore(ctx context.Context, marker *string, limit int) ([]*identity.User, error) {
	if marker == nil {
		const query = `SELECT ` + userColumns + ` FROM users ORDER BY id DESC LIMIT $1`
		return r.many(ctx, query, limit)
	}
	const query = `SELECT ` + userColumns + ` FROM users WHERE id < $1 ORDER BY id DESC LIMIT $2`
	return r.many(ctx, query, *marker, limit)
}

func (r *UserRepository) one(ctx context.Context, query string, args ...any) (*identity.User, error) {
	row := r.pool.QueryRow(ctx, query, args...)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) many(ctx context.Context, query string, args ...any) ([]*identity.User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*identity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (*identity.User, error) {
	var (
		u        identity.User
		tenantID *string
	)
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Enabled,
		&tenantID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if tenantID != nil {
		u.TenantID = *tenantID
	}
	return &u, nil
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
