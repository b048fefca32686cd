package holiday

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"collegeattendance/internal/validate"
)

// ErrNotFound is returned when a holiday id does not exist.
var ErrNotFound = errors.New("holiday not found")

// Holiday is a non-teaching day. Dates need not be distinct.
type Holiday struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// Input is the payload for adding a holiday.
type Input struct {
	Date   string `json:"date" validate:"required,isodate"`
	Reason string `json:"reason" validate:"required,max=200"`
}

// Repository persists holidays in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// List returns holidays newest first.
func (r *Repository) List(ctx context.Context) ([]Holiday, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, date, reason, created_at FROM holidays ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Holiday{}
	for rows.Next() {
		var (
			h   Holiday
			day time.Time
		)
		if err := rows.Scan(&h.ID, &day, &h.Reason, &h.CreatedAt); err != nil {
			return nil, err
		}
		h.Date = day.Format(validate.DateLayout)
		out = append(out, h)
	}
	return out, rows.Err()
}

// Create inserts a holiday.
func (r *Repository) Create(ctx context.Context, h Holiday) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO holidays (id, date, reason, created_at) VALUES ($1,$2,$3,$4)`,
		h.ID, h.Date, h.Reason, h.CreatedAt)
	return err
}

// Delete removes a holiday by id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM holidays WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of holidays.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM holidays`).Scan(&n)
	return n, err
}

// Store is the persistence the holiday service needs.
type Store interface {
	List(ctx context.Context) ([]Holiday, error)
	Create(ctx context.Context, h Holiday) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// Service manages the holiday calendar.
type Service struct {
	repo Store
}

// NewService creates a holiday service.
func NewService(repo Store) *Service {
	return &Service{repo: repo}
}

// List returns all holidays, newest first.
func (s *Service) List(ctx context.Context) ([]Holiday, error) {
	return s.repo.List(ctx)
}

// Count returns the number of holidays.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// Create validates and stores a holiday.
func (s *Service) Create(ctx context.Context, in Input) (Holiday, error) {
	in.Date = strings.TrimSpace(in.Date)
	in.Reason = strings.TrimSpace(in.Reason)
	if err := validate.Struct(in); err != nil {
		return Holiday{}, err
	}
	h := Holiday{ID: uuid.NewString(), Date: in.Date, Reason: in.Reason, CreatedAt: time.Now().UTC()}
	if err := s.repo.Create(ctx, h); err != nil {
		return Holiday{}, err
	}
	slog.Info("holiday added", "holiday_id", h.ID, "date", h.Date)
	return h, nil
}

// Delete removes a holiday.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}
