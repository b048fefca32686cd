package attendance

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"collegeattendance/internal/metrics"
	"collegeattendance/internal/queue"
	"collegeattendance/internal/roster"
	"collegeattendance/internal/validate"
)

// Store is the persistence the attendance service needs.
type Store interface {
	ReplaceDay(ctx context.Context, date string, records []Record) error
	Insert(ctx context.Context, rec Record) (Record, error)
	ListForDate(ctx context.Context, date string) ([]Record, error)
	ListForStudent(ctx context.Context, studentID string) ([]Record, error)
	CountByStatus(ctx context.Context, date string) (DayCounts, error)
	ListRange(ctx context.Context, start, end string) ([]ReportRecord, error)
}

// Roster is the read-only view of enrolled students.
type Roster interface {
	Get(ctx context.Context, id string) (roster.Student, error)
	List(ctx context.Context, withPhotoOnly bool) ([]roster.Student, error)
	Count(ctx context.Context) (int, error)
}

// HolidayCounter counts configured holidays.
type HolidayCounter interface {
	Count(ctx context.Context) (int, error)
}

// Publisher announces changed days to the worker.
type Publisher interface {
	Publish(ctx context.Context, msg queue.Message) error
}

// Service records attendance and derives roll-ups and reports from it.
type Service struct {
	repo     Store
	roster   Roster
	holidays HolidayCounter
	cache    CountsCache
	events   Publisher
	now      func() time.Time
	loc      *time.Location
}

// Option configures a Service.
type Option func(*Service)

// WithCache sets the day-count cache.
func WithCache(c CountsCache) Option { return func(s *Service) { s.cache = c } }

// WithPublisher sets where change events go.
func WithPublisher(p Publisher) Option { return func(s *Service) { s.events = p } }

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithLocation sets the timezone that decides the current date.
func WithLocation(loc *time.Location) Option { return func(s *Service) { s.loc = loc } }

// NewService creates a service backed by a repository.
func NewService(repo Store, r Roster, holidays HolidayCounter, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		roster:   r,
		holidays: holidays,
		cache:    noCache{},
		now:      time.Now,
		loc:      time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current calendar date in the configured timezone.
func (s *Service) Today() string {
	return s.now().In(s.loc).Format(validate.DateLayout)
}

// SaveManual replaces the whole of date's attendance with marks. Entries with an empty
// status are skipped. Afterwards exactly the submitted non-empty entries exist for date.
func (s *Service) SaveManual(ctx context.Context, date string, marks map[string]Status, markedBy string) ([]Record, error) {
	if err := s.checkRecordable(date); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(marks))
	for id := range marks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	created := s.now().UTC()
	records := make([]Record, 0, len(ids))
	for _, id := range ids {
		status := marks[id]
		if status == "" {
			continue
		}
		if !status.Valid() {
			return nil, validate.Errorf("status for student %s must be present or absent", id)
		}
		if _, err := uuid.Parse(id); err != nil {
			return nil, ErrUnknownStudent
		}
		records = append(records, Record{
			ID:        uuid.NewString(),
			StudentID: id,
			Date:      date,
			Status:    status,
			IsManual:  true,
			MarkedBy:  optionalUser(markedBy),
			CreatedAt: created,
		})
	}

	if err := s.repo.ReplaceDay(ctx, date, records); err != nil {
		return nil, err
	}
	metrics.RecordsWritten.WithLabelValues("manual").Add(float64(len(records)))
	slog.Info("manual attendance saved", "date", date, "records", len(records), "marked_by", markedBy)
	s.changed(ctx, date)
	return records, nil
}

// MarkAll sets every rostered student to status for date, replacing the day.
func (s *Service) MarkAll(ctx context.Context, date string, status Status, markedBy string) ([]Record, error) {
	if !status.Valid() {
		return nil, validate.Errorf("status must be present or absent")
	}
	students, err := s.roster.List(ctx, false)
	if err != nil {
		return nil, err
	}
	marks := make(map[string]Status, len(students))
	for _, st := range students {
		marks[st.ID] = status
	}
	return s.SaveManual(ctx, date, marks, markedBy)
}

// MarkAssisted records one student present for period of today. A second mark for the
// same student, date and period returns ErrAlreadyRecorded.
func (s *Service) MarkAssisted(ctx context.Context, studentID string, period int, markedBy string) (Record, error) {
	if period < FirstPeriod || period > LastPeriod {
		return Record{}, validate.Errorf("period must be between %d and %d", FirstPeriod, LastPeriod)
	}
	if _, err := uuid.Parse(studentID); err != nil {
		return Record{}, roster.ErrStudentNotFound
	}
	st, err := s.roster.Get(ctx, studentID)
	if err != nil {
		return Record{}, err
	}
	if !st.HasPhoto() {
		return Record{}, ErrNoReferencePhoto
	}

	date := s.Today()
	rec, err := s.repo.Insert(ctx, Record{
		ID:        uuid.NewString(),
		StudentID: st.ID,
		Date:      date,
		Period:    &period,
		Status:    StatusPresent,
		IsManual:  false,
		MarkedBy:  optionalUser(markedBy),
		CreatedAt: s.now().UTC(),
	})
	if errors.Is(err, ErrAlreadyRecorded) {
		metrics.AssistedDuplicates.Inc()
		return Record{}, err
	}
	if err != nil {
		return Record{}, err
	}
	metrics.RecordsWritten.WithLabelValues("assisted").Inc()
	slog.Info("assisted attendance marked", "student_id", st.ID, "date", date, "period", period)
	s.changed(ctx, date)
	return rec, nil
}

// ForDate returns the statuses already stored for date, keyed by student id.
func (s *Service) ForDate(ctx context.Context, date string) (map[string]Status, error) {
	if _, err := validate.Date("date", date); err != nil {
		return nil, err
	}
	records, err := s.repo.ListForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Status, len(records))
	for _, rec := range records {
		out[rec.StudentID] = rec.Status
	}
	return out, nil
}

func (s *Service) checkRecordable(date string) error {
	day, err := validate.Date("date", date)
	if err != nil {
		return err
	}
	today, _ := time.Parse(validate.DateLayout, s.Today())
	if day.After(today) {
		return validate.Errorf("attendance cannot be recorded for a future date")
	}
	return nil
}

// changed drops cached counts for date and tells the worker to rebuild them. Failures
// only cost freshness, so they are logged.
func (s *Service) changed(ctx context.Context, date string) {
	if err := s.cache.Invalidate(ctx, date); err != nil {
		slog.Warn("invalidate day counts failed", "date", date, "error", err)
	}
	if s.events == nil {
		return
	}
	msg := queue.Message{Type: queue.TopicAttendanceChanged, Body: []byte(date)}
	if err := s.events.Publish(ctx, msg); err != nil {
		slog.Warn("publish attendance change failed", "date", date, "error", err)
	}
}

func optionalUser(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
