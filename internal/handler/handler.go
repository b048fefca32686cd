// Package handler exposes the attendance services over HTTP.
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"collegeattendance/internal/admin"
	"collegeattendance/internal/attendance"
	"collegeattendance/internal/auth"
	"collegeattendance/internal/holiday"
	"collegeattendance/internal/roster"
)

// Accounts signs users up, in and out.
type Accounts interface {
	SignUp(ctx context.Context, in auth.SignUpInput) (auth.Session, error)
	SignIn(ctx context.Context, email, password string) (auth.Session, error)
	Refresh(ctx context.Context, refreshToken string) (auth.Session, error)
	SignOut(ctx context.Context, access auth.Claims, refreshToken string) error
	Authenticate(ctx context.Context, accessToken string) (auth.Claims, error)
	Me(ctx context.Context, userID string) (auth.User, error)
}

// Roster manages enrolled students.
type Roster interface {
	List(ctx context.Context, withPhotoOnly bool) ([]roster.Student, error)
	Get(ctx context.Context, id string) (roster.Student, error)
	Create(ctx context.Context, in roster.Input) (roster.Student, error)
	Update(ctx context.Context, id string, in roster.Input) (roster.Student, error)
	Delete(ctx context.Context, id string) error
	UploadPhoto(ctx context.Context, id, filename string, data []byte) (roster.Student, error)
}

// Attendance records attendance and reads roll-ups and reports.
type Attendance interface {
	Today() string
	SaveManual(ctx context.Context, date string, marks map[string]attendance.Status, markedBy string) ([]attendance.Record, error)
	MarkAll(ctx context.Context, date string, status attendance.Status, markedBy string) ([]attendance.Record, error)
	MarkAssisted(ctx context.Context, studentID string, period int, markedBy string) (attendance.Record, error)
	ForDate(ctx context.Context, date string) (map[string]attendance.Status, error)
	Dashboard(ctx context.Context) (attendance.DashboardStats, error)
	StudentStats(ctx context.Context, studentID string) (attendance.StudentReport, error)
	Records(ctx context.Context, f attendance.ReportFilter) ([]attendance.ReportRecord, error)
}

// Holidays manages the holiday calendar.
type Holidays interface {
	List(ctx context.Context) ([]holiday.Holiday, error)
	Create(ctx context.Context, in holiday.Input) (holiday.Holiday, error)
	Delete(ctx context.Context, id string) error
}

// Admins manages admin grants.
type Admins interface {
	Grant(ctx context.Context, email string) (admin.Profile, error)
	Revoke(ctx context.Context, userID string) error
	List(ctx context.Context) ([]admin.Profile, error)
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// Handler serves the JSON API.
type Handler struct {
	accounts   Accounts
	roster     Roster
	attendance Attendance
	holidays   Holidays
	admins     Admins
	maxPhoto   int64
}

// New creates a handler.
func New(accounts Accounts, r Roster, att Attendance, holidays Holidays, admins Admins) *Handler {
	return &Handler{
		accounts:   accounts,
		roster:     r,
		attendance: att,
		holidays:   holidays,
		admins:     admins,
		maxPhoto:   5 << 20,
	}
}

// Register mounts the API under /v1. extra runs on every /v1 route after the session
// check, e.g. a per-user rate limit.
func (h *Handler) Register(r *gin.Engine, extra ...gin.HandlerFunc) {
	v1 := r.Group("/v1")

	public := v1.Group("/auth")
	public.POST("/signup", h.SignUp)
	public.POST("/login", h.Login)
	public.POST("/refresh", h.Refresh)

	session := v1.Group("", append([]gin.HandlerFunc{auth.RequireSession(h.accounts)}, extra...)...)
	session.POST("/auth/logout", h.Logout)
	session.GET("/auth/me", h.Me)
	session.GET("/me/attendance", h.MyAttendance)
	session.GET("/sections", h.Sections)

	admins := session.Group("", auth.RequireAdmin(h.admins))
	admins.GET("/dashboard", h.Dashboard)

	admins.GET("/students", h.ListStudents)
	admins.POST("/students", h.CreateStudent)
	admins.GET("/students/:id", h.GetStudent)
	admins.PUT("/students/:id", h.UpdateStudent)
	admins.DELETE("/students/:id", h.DeleteStudent)
	admins.PUT("/students/:id/photo", h.UploadPhoto)
	admins.GET("/students/:id/attendance", h.StudentAttendance)

	admins.GET("/attendance", h.AttendanceForDate)
	admins.PUT("/attendance/:date", h.SaveManual)
	admins.POST("/attendance/assisted", h.MarkAssisted)

	admins.GET("/records", h.Records)
	admins.GET("/records/export", h.Export)

	admins.GET("/holidays", h.ListHolidays)
	admins.POST("/holidays", h.CreateHoliday)
	admins.DELETE("/holidays/:id", h.DeleteHoliday)

	admins.GET("/admins", h.ListAdmins)
	admins.POST("/admins", h.GrantAdmin)
	admins.DELETE("/admins/:user_id", h.RevokeAdmin)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorBody{Title: "Not Found", Description: "The page you are looking for does not exist."})
	})
}

func userID(c *gin.Context) string {
	claims, _ := auth.ClaimsFrom(c)
	return claims.UserID()
}
