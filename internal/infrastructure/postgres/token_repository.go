package postgres

import (
	"context"
	"errors"

	identity "identity/backend/internal/domain/identity"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TokenRepository persists tokens in PostgreSQL.
type TokenRepository struct {
	pool *pgxpool.Pool
}

// NewTokenRepository constructs a repository.
func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

const tokenColumns = `id, user_id, tenant_id, expires_at, created_at`

// Create inserts a token record.
func (r *TokenRepository) Create(ctx context.Context, token *identity.Token) error {
	const query = `
INSERT INTO tokens (id, user_id, tenant_id, expires_at, created_at)
VALUES ($1, $2, $3, $4, $5)
`
	_, err := r.pool.Exec(ctx, query,
		token.ID,
		token.UserID,
		scopeColumn(token.Scope),
		token.ExpiresAt,
		token.CreatedAt,
	)
	return err
}

// Get retrieves a token by id.
func (r *TokenRepository) Get(ctx context.Context, id string) (*identity.Token, error) {
	const query = `SELECT ` + tokenColumns + ` FROM tokens WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	token, err := scanToken(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrTokenNotFound
		}
		return nil, err
	}
	return token, nil
}

// GetForUser returns the latest-expiring token for the exact
// (user, scope) pair.
func (r *TokenRepository) GetForUser(ctx context.Context, userID string, scope identity.Scope) (*identity.Token, error) {
	const query = `
SELECT ` + tokenColumns + ` FROM tokens
WHERE user_id = $1 AND tenant_id IS NOT DISTINCT FROM $2
ORDER BY expires_at DESC
LIMIT 1
`
	row := r.pool.QueryRow(ctx, query, userID, scopeColumn(scope))
	token, err := scanToken(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrTokenNotFound
		}
		return nil, err
	}
	return token, nil
}

// Delete removes a token by id.
func (r *TokenRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tokens WHERE id = $1`
	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return identity.ErrTokenNotFound
	}
	return nil
}

func scanToken(row pgx.Row) (*identity.Token, error) {
	var (
		t        identity.Token
		tenantID *string
	)
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&tenantID,
		&t.ExpiresAt,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Scope = columnScope(tenantID)
	return &t, nil
}
