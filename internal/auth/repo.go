package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"collegeattendance/internal/store"
)

// Repository stores profiles and refresh tokens in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const profileColumns = `id, email, full_name, password_hash, created_at`

func scanAccount(row *sql.Row) (account, error) {
	var a account
	err := row.Scan(&a.ID, &a.Email, &a.FullName, &a.passwordHash, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return account{}, ErrAccountNotFound
	}
	return a, err
}

// CreateProfile inserts a profile. A taken email yields ErrEmailTaken.
func (r *Repository) CreateProfile(ctx context.Context, a account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES ($1,$2,$3,$4,$5)
	`, a.ID, a.Email, a.FullName, a.passwordHash, a.CreatedAt)
	if store.IsUniqueViolation(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// ProfileByEmail returns the profile with email, case-insensitively.
func (r *Repository) ProfileByEmail(ctx context.Context, email string) (account, error) {
	return scanAccount(r.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE LOWER(email) = LOWER($1)`, email))
}

// ProfileByID returns the profile with id.
func (r *Repository) ProfileByID(ctx context.Context, id string) (account, error) {
	return scanAccount(r.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
}

// SaveRefresh records an issued refresh token id.
func (r *Repository) SaveRefresh(ctx context.Context, tokenID, userID string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO refresh_tokens (token, user_id, expires_at) VALUES ($1, $2, $3)`, tokenID, userID, expiresAt)
	return err
}

// UseRefresh revokes a live refresh token and returns its owner. A token that is unknown,
// revoked or expired yields ErrInvalidToken.
func (r *Repository) UseRefresh(ctx context.Context, tokenID string, now time.Time) (string, error) {
	var userID string
	err := r.db.QueryRowContext(ctx, `
		UPDATE refresh_tokens SET revoked = TRUE
		WHERE token = $1 AND NOT revoked AND expires_at > $2
		RETURNING user_id
	`, tokenID, now).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrInvalidToken
	}
	return userID, err
}

// RevokeRefresh marks a refresh token revoked. Unknown tokens are ignored.
func (r *Repository) RevokeRefresh(ctx context.Context, tokenID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1`, tokenID)
	return err
}

// PurgeRefresh deletes refresh tokens that expired before now or were revoked.
func (r *Repository) PurgeRefresh(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= $1 OR revoked`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
