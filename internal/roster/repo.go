package roster

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"collegeattendance/internal/store"
)

const studentColumns = `id, roll_number, name, email, class, section, photo_url, created_at, updated_at`

// Repository persists the roster in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStudent(row scanner) (Student, error) {
	var st Student
	err := row.Scan(&st.ID, &st.RollNumber, &st.Name, &st.Email, &st.Class, &st.Section, &st.PhotoURL, &st.CreatedAt, &st.UpdatedAt)
	return st, err
}

// List returns students ordered by roll number, optionally only those with a photo.
func (r *Repository) List(ctx context.Context, withPhotoOnly bool) ([]Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students`
	if withPhotoOnly {
		query += ` WHERE photo_url IS NOT NULL AND photo_url <> ''`
	}
	query += ` ORDER BY roll_number`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := []Student{}
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, st)
	}
	return students, rows.Err()
}

// Get returns a single student by id.
func (r *Repository) Get(ctx context.Context, id string) (Student, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id)
	st, err := scanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Student{}, ErrStudentNotFound
	}
	return st, err
}

// FindByEmail returns the student whose contact email matches, case-insensitively.
func (r *Repository) FindByEmail(ctx context.Context, email string) (Student, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+studentColumns+` FROM students WHERE LOWER(email) = LOWER($1) LIMIT 1`, email)
	st, err := scanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Student{}, ErrStudentNotFound
	}
	return st, err
}

// Create inserts a student. A duplicate roll number yields ErrDuplicateRoll.
func (r *Repository) Create(ctx context.Context, in Input) (Student, error) {
	now := time.Now().UTC()
	st := Student{
		ID:         uuid.NewString(),
		RollNumber: in.RollNumber,
		Name:       in.Name,
		Email:      optional(in.Email),
		Class:      in.Class,
		Section:    optional(in.Section),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO students (id, roll_number, name, email, class, section, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, st.ID, st.RollNumber, st.Name, st.Email, st.Class, st.Section, st.CreatedAt, st.UpdatedAt)
	if store.IsUniqueViolation(err) {
		return Student{}, ErrDuplicateRoll
	}
	if err != nil {
		return Student{}, fmt.Errorf("insert student: %w", err)
	}
	return st, nil
}

// Update replaces the editable fields of a student and returns the stored row.
func (r *Repository) Update(ctx context.Context, id string, in Input) (Student, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE students
		SET roll_number = $2, name = $3, email = $4, class = $5, section = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING `+studentColumns,
		id, in.RollNumber, in.Name, optional(in.Email), in.Class, optional(in.Section))
	st, err := scanStudent(row)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return Student{}, ErrStudentNotFound
	case store.IsUniqueViolation(err):
		return Student{}, ErrDuplicateRoll
	case err != nil:
		return Student{}, fmt.Errorf("update student: %w", err)
	}
	return st, nil
}

// SetPhoto records the public URL of the student's reference photo.
func (r *Repository) SetPhoto(ctx context.Context, id, photoURL string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE students SET photo_url = $2, updated_at = NOW() WHERE id = $1`, id, photoURL)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes a student; attendance history goes with it via ON DELETE CASCADE.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Count returns the roster size.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM students`).Scan(&n)
	return n, err
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStudentNotFound
	}
	return nil
}
