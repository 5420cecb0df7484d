package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository resolves session keys for join authentication.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// SessionKey returns the stored session key for a user. A missing user is
// not an error: the empty string tells the caller the claim is invalid.
func (r *UserRepository) SessionKey(ctx context.Context, userID int64) (string, error) {
	var key string
	err := r.pool.QueryRow(ctx, stmtGetUserSession, userID).Scan(&key)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying session key for user %d: %w", userID, err)
	}
	return key, nil
}
