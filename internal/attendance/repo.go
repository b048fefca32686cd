package attendance

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"collegeattendance/internal/store"
	"collegeattendance/internal/validate"
)

const recordColumns = `id, student_id, date, period, status, is_manual, marked_by, created_at`

// Repository persists attendance data in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ReplaceDay deletes every record of date and inserts records in its place. Both steps
// run in one transaction so a failed insert leaves the previous day intact.
func (r *Repository) ReplaceDay(ctx context.Context, date string, records []Record) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM attendance WHERE date = $1`, date); err != nil {
		return fmt.Errorf("clear day: %w", err)
	}
	if len(records) > 0 {
		query, args := bulkInsert(records)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return classify(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

func bulkInsert(records []Record) (string, []any) {
	const width = 8
	var b strings.Builder
	b.WriteString(`INSERT INTO attendance (` + recordColumns + `) VALUES `)
	args := make([]any, 0, len(records)*width)
	for i, rec := range records {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j := 1; j <= width; j++ {
			if j > 1 {
				b.WriteString(",")
			}
			b.WriteString("$" + strconv.Itoa(i*width+j))
		}
		b.WriteString(")")
		args = append(args, rec.ID, rec.StudentID, rec.Date, rec.Period, string(rec.Status), rec.IsManual, rec.MarkedBy, rec.CreatedAt)
	}
	return b.String(), args
}

// Insert writes a single record. An occupied slot yields ErrAlreadyRecorded.
func (r *Repository) Insert(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance (`+recordColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, rec.ID, rec.StudentID, rec.Date, rec.Period, string(rec.Status), rec.IsManual, rec.MarkedBy, rec.CreatedAt)
	if err != nil {
		return Record{}, classify(err)
	}
	return rec, nil
}

func classify(err error) error {
	switch {
	case store.IsUniqueViolation(err):
		return ErrAlreadyRecorded
	case store.IsForeignKeyViolation(err):
		return ErrUnknownStudent
	default:
		return fmt.Errorf("insert attendance: %w", err)
	}
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	defer rows.Close()
	records := []Record{}
	for rows.Next() {
		var (
			rec    Record
			day    time.Time
			period sql.NullInt64
			status string
		)
		if err := rows.Scan(&rec.ID, &rec.StudentID, &day, &period, &status, &rec.IsManual, &rec.MarkedBy, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Date = day.Format(validate.DateLayout)
		rec.Status = Status(status)
		if period.Valid {
			p := int(period.Int64)
			rec.Period = &p
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListForDate returns all records of one date.
func (r *Repository) ListForDate(ctx context.Context, date string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+recordColumns+` FROM attendance
		WHERE date = $1
		ORDER BY created_at, period
	`, date)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

// ListForStudent returns a student's history, newest date first, periods ascending.
func (r *Repository) ListForStudent(ctx context.Context, studentID string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+recordColumns+` FROM attendance
		WHERE student_id = $1
		ORDER BY date DESC, period ASC
	`, studentID)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

// CountByStatus counts the records of one date per status.
func (r *Repository) CountByStatus(ctx context.Context, date string) (DayCounts, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM attendance
		WHERE date = $1
		GROUP BY status
	`, date)
	if err != nil {
		return DayCounts{}, err
	}
	defer rows.Close()

	var counts DayCounts
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return DayCounts{}, err
		}
		switch Status(status) {
		case StatusPresent:
			counts.Present = n
		case StatusAbsent:
			counts.Absent = n
		}
	}
	return counts, rows.Err()
}

// ListRange returns records with start <= date <= end joined with their student,
// newest first.
func (r *Repository) ListRange(ctx context.Context, start, end string) ([]ReportRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.id, a.date, a.period, a.status, a.is_manual,
		       s.roll_number, s.name, s.class, COALESCE(s.section, '')
		FROM attendance a
		JOIN students s ON s.id = a.student_id
		WHERE a.date >= $1 AND a.date <= $2
		ORDER BY a.date DESC, s.roll_number, a.period
	`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []ReportRecord{}
	for rows.Next() {
		var (
			rec    ReportRecord
			day    time.Time
			period sql.NullInt64
			status string
		)
		if err := rows.Scan(&rec.ID, &day, &period, &status, &rec.IsManual,
			&rec.Student.RollNumber, &rec.Student.Name, &rec.Student.Class, &rec.Student.Section); err != nil {
			return nil, err
		}
		rec.Date = day.Format(validate.DateLayout)
		rec.Status = Status(status)
		if period.Valid {
			p := int(period.Int64)
			rec.Period = &p
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
