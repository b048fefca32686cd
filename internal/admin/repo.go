package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"collegeattendance/internal/store"
)

// Repository reads profiles and stores role grants in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// FindProfileByEmail looks a profile up by email, case-insensitively.
func (r *Repository) FindProfileByEmail(ctx context.Context, email string) (Profile, error) {
	var p Profile
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, full_name, created_at FROM profiles WHERE LOWER(email) = LOWER($1)`, email).
		Scan(&p.ID, &p.Email, &p.FullName, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, ErrUserNotFound
	}
	return p, err
}

// InsertGrant gives userID the role. An existing grant yields ErrAlreadyAdmin.
func (r *Repository) InsertGrant(ctx context.Context, userID, role string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`, userID, role)
	switch {
	case store.IsUniqueViolation(err):
		return ErrAlreadyAdmin
	case store.IsForeignKeyViolation(err):
		return ErrUserNotFound
	case err != nil:
		return fmt.Errorf("insert grant: %w", err)
	}
	return nil
}

// DeleteGrant removes the role from userID. Deleting a missing grant is not an error.
func (r *Repository) DeleteGrant(ctx context.Context, userID, role string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1 AND role = $2`, userID, role)
	return err
}

// ListGrantUserIDs returns the ids holding role, oldest grant first.
func (r *Repository) ListGrantUserIDs(ctx context.Context, role string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT user_id FROM user_roles WHERE role = $1 ORDER BY created_at`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ProfilesByIDs returns the profiles whose id is in ids, in no particular order.
func (r *Repository) ProfilesByIDs(ctx context.Context, ids []string) ([]Profile, error) {
	if len(ids) == 0 {
		return []Profile{}, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, email, full_name, created_at FROM profiles WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Profile{}
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.Email, &p.FullName, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// HasRole reports whether userID holds role.
func (r *Repository) HasRole(ctx context.Context, userID, role string) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_roles WHERE user_id = $1 AND role = $2)`, userID, role).Scan(&ok)
	return ok, err
}
