package handler

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"collegeattendance/internal/admin"
	"collegeattendance/internal/attendance"
	"collegeattendance/internal/auth"
	"collegeattendance/internal/holiday"
	"collegeattendance/internal/roster"
)

const (
	adminID   = "aaaaaaaa-0000-4000-8000-000000000001"
	studentID = "bbbbbbbb-0000-4000-8000-000000000002"
)

type fakeAccounts struct {
	signedOut []string
}

func claimsFor(sub string) auth.Claims {
	return auth.Claims{Kind: auth.KindAccess, RegisteredClaims: jwt.RegisteredClaims{Subject: sub, ID: "jti-" + sub}}
}

func (f *fakeAccounts) SignUp(_ context.Context, in auth.SignUpInput) (auth.Session, error) {
	if in.Email == "taken@college.edu" {
		return auth.Session{}, auth.ErrEmailTaken
	}
	return auth.Session{User: auth.User{ID: "new", Email: in.Email}}, nil
}

func (f *fakeAccounts) SignIn(_ context.Context, email, password string) (auth.Session, error) {
	if password != "secret1" {
		return auth.Session{}, auth.ErrInvalidCredentials
	}
	return auth.Session{User: auth.User{ID: adminID, Email: email}}, nil
}

func (f *fakeAccounts) Refresh(context.Context, string) (auth.Session, error) {
	return auth.Session{}, auth.ErrInvalidToken
}

func (f *fakeAccounts) SignOut(_ context.Context, access auth.Claims, _ string) error {
	f.signedOut = append(f.signedOut, access.ID)
	return nil
}

func (f *fakeAccounts) Authenticate(_ context.Context, token string) (auth.Claims, error) {
	switch token {
	case "admin-token":
		return claimsFor(adminID), nil
	case "student-token":
		return claimsFor(studentID), nil
	}
	return auth.Claims{}, auth.ErrInvalidToken
}

func (f *fakeAccounts) Me(_ context.Context, id string) (auth.User, error) {
	return auth.User{ID: id, IsAdmin: id == adminID}, nil
}

type fakeRoster struct {
	students []roster.Student
	photos   map[string]int
}

func (f *fakeRoster) List(_ context.Context, withPhotoOnly bool) ([]roster.Student, error) {
	out := []roster.Student{}
	for _, st := range f.students {
		if withPhotoOnly && !st.HasPhoto() {
			continue
		}
		out = append(out, st)
	}
	return out, nil
}

func (f *fakeRoster) Get(_ context.Context, id string) (roster.Student, error) {
	for _, st := range f.students {
		if st.ID == id {
			return st, nil
		}
	}
	return roster.Student{}, roster.ErrStudentNotFound
}

func (f *fakeRoster) Create(_ context.Context, in roster.Input) (roster.Student, error) {
	if in.RollNumber == "101" {
		return roster.Student{}, roster.ErrDuplicateRoll
	}
	return roster.Student{ID: "new", RollNumber: in.RollNumber, Name: in.Name}, nil
}

func (f *fakeRoster) Update(_ context.Context, id string, in roster.Input) (roster.Student, error) {
	return roster.Student{ID: id, RollNumber: in.RollNumber}, nil
}

func (f *fakeRoster) Delete(ctx context.Context, id string) error {
	_, err := f.Get(ctx, id)
	return err
}

func (f *fakeRoster) UploadPhoto(_ context.Context, id, filename string, data []byte) (roster.Student, error) {
	if f.photos == nil {
		f.photos = map[string]int{}
	}
	f.photos[id+"/"+filename] = len(data)
	url := "https://cdn.example/" + id + ".jpg"
	return roster.Student{ID: id, PhotoURL: &url}, nil
}

type fakeAttendance struct {
	today    string
	saved    map[string]attendance.Status
	allSet   attendance.Status
	assisted map[string]bool
	records  []attendance.ReportRecord
	filters  []attendance.ReportFilter
}

func (f *fakeAttendance) Today() string { return f.today }

func (f *fakeAttendance) SaveManual(_ context.Context, date string, marks map[string]attendance.Status, _ string) ([]attendance.Record, error) {
	f.saved = marks
	out := []attendance.Record{}
	for id, st := range marks {
		if st != "" {
			out = append(out, attendance.Record{StudentID: id, Date: date, Status: st, IsManual: true})
		}
	}
	return out, nil
}

func (f *fakeAttendance) MarkAll(_ context.Context, date string, status attendance.Status, _ string) ([]attendance.Record, error) {
	f.allSet = status
	return []attendance.Record{{StudentID: studentID, Date: date, Status: status, IsManual: true}}, nil
}

func (f *fakeAttendance) MarkAssisted(_ context.Context, id string, period int, _ string) (attendance.Record, error) {
	if f.assisted == nil {
		f.assisted = map[string]bool{}
	}
	key := fmt.Sprintf("%s/%d", id, period)
	if f.assisted[key] {
		return attendance.Record{}, attendance.ErrAlreadyRecorded
	}
	f.assisted[key] = true
	return attendance.Record{StudentID: id, Date: f.today, Period: &period, Status: attendance.StatusPresent}, nil
}

func (f *fakeAttendance) ForDate(context.Context, string) (map[string]attendance.Status, error) {
	return map[string]attendance.Status{studentID: attendance.StatusPresent}, nil
}

func (f *fakeAttendance) Dashboard(context.Context) (attendance.DashboardStats, error) {
	return attendance.DashboardStats{Date: f.today, TotalStudents: 3, PresentToday: 2, AbsentToday: 1}, nil
}

func (f *fakeAttendance) StudentStats(_ context.Context, id string) (attendance.StudentReport, error) {
	if id != studentID {
		return attendance.StudentReport{}, roster.ErrStudentNotFound
	}
	return attendance.StudentReport{StudentID: id, Records: []attendance.Record{{StudentID: id, Status: attendance.StatusPresent}}, TotalPresent: 1, AttendancePercentage: 100}, nil
}

func (f *fakeAttendance) Records(_ context.Context, filter attendance.ReportFilter) ([]attendance.ReportRecord, error) {
	f.filters = append(f.filters, filter)
	return attendance.FilterSection(f.records, filter.Section), nil
}

type fakeHolidays struct{ list []holiday.Holiday }

func (f *fakeHolidays) List(context.Context) ([]holiday.Holiday, error) { return f.list, nil }

func (f *fakeHolidays) Create(_ context.Context, in holiday.Input) (holiday.Holiday, error) {
	h := holiday.Holiday{ID: "h1", Date: in.Date, Reason: in.Reason}
	f.list = append(f.list, h)
	return h, nil
}

func (f *fakeHolidays) Delete(context.Context, string) error { return holiday.ErrNotFound }

type fakeAdmins struct {
	granted map[string]bool
}

func (f *fakeAdmins) Grant(_ context.Context, email string) (admin.Profile, error) {
	if email == "ghost@college.edu" {
		return admin.Profile{}, admin.ErrUserNotFound
	}
	if f.granted[email] {
		return admin.Profile{}, admin.ErrAlreadyAdmin
	}
	f.granted[email] = true
	return admin.Profile{ID: "p1", Email: email}, nil
}

func (f *fakeAdmins) Revoke(context.Context, string) error { return nil }

func (f *fakeAdmins) List(context.Context) ([]admin.Profile, error) { return []admin.Profile{}, nil }

func (f *fakeAdmins) IsAdmin(_ context.Context, userID string) (bool, error) {
	return userID == adminID, nil
}
