package roster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"collegeattendance/internal/photo"
	"collegeattendance/internal/validate"
)

// Store is the persistence the roster service needs.
type Store interface {
	List(ctx context.Context, withPhotoOnly bool) ([]Student, error)
	Get(ctx context.Context, id string) (Student, error)
	FindByEmail(ctx context.Context, email string) (Student, error)
	Create(ctx context.Context, in Input) (Student, error)
	Update(ctx context.Context, id string, in Input) (Student, error)
	SetPhoto(ctx context.Context, id, photoURL string) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// PhotoStore stores an object under key with extension ext, overwriting any previous
// object, and returns its public URL.
type PhotoStore interface {
	Put(ctx context.Context, key, ext string, data []byte) (string, error)
}

// Service is the roster provider: student CRUD and reference photos.
type Service struct {
	repo         Store
	photos       PhotoStore
	photoMaxSide int
	onDelete     []func(ctx context.Context, id string)
}

// NewService creates a roster service. photos may be nil when uploads are disabled.
func NewService(repo Store, photos PhotoStore, photoMaxSide int) *Service {
	return &Service{repo: repo, photos: photos, photoMaxSide: photoMaxSide}
}

// OnDelete registers fn to run after a student was deleted. Call it before serving.
func (s *Service) OnDelete(fn func(ctx context.Context, id string)) {
	s.onDelete = append(s.onDelete, fn)
}

// List returns the roster ordered by roll number. withPhotoOnly restricts it to the
// candidates of the assisted flow.
func (s *Service) List(ctx context.Context, withPhotoOnly bool) ([]Student, error) {
	return s.repo.List(ctx, withPhotoOnly)
}

// Get returns one student.
func (s *Service) Get(ctx context.Context, id string) (Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Student{}, ErrStudentNotFound
	}
	return s.repo.Get(ctx, id)
}

// FindByEmail returns the roster entry with the given contact email.
func (s *Service) FindByEmail(ctx context.Context, email string) (Student, error) {
	return s.repo.FindByEmail(ctx, strings.TrimSpace(email))
}

// Count returns the number of enrolled students.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// Create validates and adds a student.
func (s *Service) Create(ctx context.Context, in Input) (Student, error) {
	in = clean(in)
	if err := validate.Struct(in); err != nil {
		return Student{}, err
	}
	st, err := s.repo.Create(ctx, in)
	if err != nil {
		return Student{}, err
	}
	slog.Info("student created", "student_id", st.ID, "roll_number", st.RollNumber)
	return st, nil
}

// Update validates and replaces a student's editable fields.
func (s *Service) Update(ctx context.Context, id string, in Input) (Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Student{}, ErrStudentNotFound
	}
	in = clean(in)
	if err := validate.Struct(in); err != nil {
		return Student{}, err
	}
	return s.repo.Update(ctx, id, in)
}

// Delete removes a student and, through the storage policy, their attendance.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrStudentNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("student deleted", "student_id", id)
	for _, fn := range s.onDelete {
		fn(ctx, id)
	}
	return nil
}

// UploadPhoto stores a student's reference photo under "<id>.<ext>" and records its URL.
func (s *Service) UploadPhoto(ctx context.Context, id, filename string, data []byte) (Student, error) {
	if s.photos == nil {
		return Student{}, ErrPhotosDisabled
	}
	st, err := s.Get(ctx, id)
	if err != nil {
		return Student{}, err
	}
	ext := photo.Extension(filename)
	if ext == "" {
		return Student{}, validate.Errorf("photo file name needs an extension")
	}
	normalized, err := photo.Normalize(data, ext, s.photoMaxSide)
	if errors.Is(err, photo.ErrUnsupportedFormat) || errors.Is(err, photo.ErrUnreadable) {
		return Student{}, validate.Errorf("%v", err)
	}
	if err != nil {
		return Student{}, err
	}
	url, err := s.photos.Put(ctx, st.ID, ext, normalized)
	if err != nil {
		return Student{}, fmt.Errorf("upload photo: %w", err)
	}
	if err := s.repo.SetPhoto(ctx, st.ID, url); err != nil {
		return Student{}, err
	}
	st.PhotoURL = &url
	slog.Info("student photo updated", "student_id", st.ID, "bytes", len(normalized))
	return st, nil
}

func clean(in Input) Input {
	in.RollNumber = strings.TrimSpace(in.RollNumber)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Class = strings.TrimSpace(in.Class)
	in.Section = strings.TrimSpace(in.Section)
	return in
}
