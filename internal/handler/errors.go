package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"collegeattendance/internal/admin"
	"collegeattendance/internal/attendance"
	"collegeattendance/internal/auth"
	"collegeattendance/internal/holiday"
	"collegeattendance/internal/roster"
	"collegeattendance/internal/validate"
)

type errorBody struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type failure struct {
	err         error
	status      int
	title       string
	description string
}

var failures = []failure{
	{admin.ErrUserNotFound, http.StatusNotFound, "Error", "User not found. They need to sign up first."},
	{admin.ErrAlreadyAdmin, http.StatusConflict, "Already Admin", "This user is already an admin."},
	{attendance.ErrAlreadyRecorded, http.StatusConflict, "Already Recorded", "Attendance for this student and period is already recorded."},
	{attendance.ErrUnknownStudent, http.StatusBadRequest, "Error", "One or more students are not on the roster."},
	{attendance.ErrNoReferencePhoto, http.StatusUnprocessableEntity, "Error", "This student has no reference photo."},
	{roster.ErrStudentNotFound, http.StatusNotFound, "Error", "Student not found."},
	{roster.ErrDuplicateRoll, http.StatusConflict, "Error", "A student with this roll number already exists."},
	{roster.ErrPhotosDisabled, http.StatusServiceUnavailable, "Error", "Photo storage is not configured."},
	{holiday.ErrNotFound, http.StatusNotFound, "Error", "Holiday not found."},
	{auth.ErrEmailTaken, http.StatusConflict, "Error", "An account with this email already exists."},
	{auth.ErrInvalidCredentials, http.StatusUnauthorized, "Error", "Invalid email or password."},
	{auth.ErrInvalidToken, http.StatusUnauthorized, "Unauthorized", "Your session has expired. Please sign in again."},
	{auth.ErrAccountNotFound, http.StatusNotFound, "Error", "Account not found."},
}

// fail writes the error body for err. Unknown errors are logged and reported as 500.
func fail(c *gin.Context, err error) {
	if errors.Is(err, validate.ErrInvalid) {
		c.JSON(http.StatusBadRequest, errorBody{Title: "Invalid input", Description: validate.Message(err)})
		return
	}
	for _, f := range failures {
		if errors.Is(err, f.err) {
			c.JSON(f.status, errorBody{Title: f.title, Description: f.description})
			return
		}
	}
	slog.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, errorBody{Title: "Error", Description: "Something went wrong. Please try again."})
}

func badRequest(c *gin.Context, description string) {
	c.JSON(http.StatusBadRequest, errorBody{Title: "Invalid input", Description: description})
}
