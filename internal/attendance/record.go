package attendance

import (
	"errors"
	"time"
)

// Status is the only state an attendance record can hold once written.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
)

// Valid reports whether s is one of the two recordable statuses.
func (s Status) Valid() bool {
	return s == StatusPresent || s == StatusAbsent
}

// Periods in a teaching day available to the assisted flow.
const (
	FirstPeriod = 1
	LastPeriod  = 7
)

var (
	// ErrAlreadyRecorded is returned when the (student, date[, period]) slot is taken.
	ErrAlreadyRecorded = errors.New("attendance already recorded")
	// ErrUnknownStudent is returned when a record references a student not on the roster.
	ErrUnknownStudent = errors.New("unknown student")
	// ErrNoReferencePhoto excludes students without a photo from the assisted flow.
	ErrNoReferencePhoto = errors.New("student has no reference photo")
)

// Record is one stored attendance status.
type Record struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	Date      string    `json:"date"`
	Period    *int      `json:"period"`
	Status    Status    `json:"status"`
	IsManual  bool      `json:"is_manual"`
	MarkedBy  *string   `json:"marked_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// StudentRef is the slice of the roster joined onto report rows.
type StudentRef struct {
	RollNumber string `json:"roll_number"`
	Name       string `json:"name"`
	Class      string `json:"class"`
	Section    string `json:"section"`
}

// ReportRecord is a record joined with its student for the records view and exports.
type ReportRecord struct {
	ID       string     `json:"id"`
	Date     string     `json:"date"`
	Period   *int       `json:"period"`
	Status   Status     `json:"status"`
	IsManual bool       `json:"is_manual"`
	Student  StudentRef `json:"student"`
}

// DayCounts are the per-status record counts of one date.
type DayCounts struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
}
