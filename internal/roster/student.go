package roster

import (
	"errors"
	"time"
)

// AllSections is the sentinel section filter meaning "no filter".
const AllSections = "All Sections"

// Sections are the class sections a student may belong to.
var Sections = []string{"CSE-A", "CSE-B", "CSE-C", "CSE-AI", "ECE-A", "ECE-B", "Mech"}

var (
	ErrStudentNotFound = errors.New("student not found")
	ErrDuplicateRoll   = errors.New("roll number already exists")
	ErrPhotosDisabled  = errors.New("photo storage not configured")
)

// Student is one enrolled student on the roster.
type Student struct {
	ID         string    `json:"id"`
	RollNumber string    `json:"roll_number"`
	Name       string    `json:"name"`
	Email      *string   `json:"email"`
	Class      string    `json:"class"`
	Section    *string   `json:"section"`
	PhotoURL   *string   `json:"photo_url"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// HasPhoto reports whether a reference photo has been uploaded.
func (s Student) HasPhoto() bool {
	return s.PhotoURL != nil && *s.PhotoURL != ""
}

// SectionName returns the section or "" when unset.
func (s Student) SectionName() string {
	if s.Section == nil {
		return ""
	}
	return *s.Section
}

// Input is the editable part of a student.
type Input struct {
	RollNumber string `json:"roll_number" validate:"required,max=32"`
	Name       string `json:"name" validate:"required,max=200"`
	Email      string `json:"email" validate:"omitempty,email"`
	Class      string `json:"class" validate:"required,max=64"`
	Section    string `json:"section" validate:"omitempty,oneof=CSE-A CSE-B CSE-C CSE-AI ECE-A ECE-B Mech"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
