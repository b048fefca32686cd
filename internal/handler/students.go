package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"collegeattendance/internal/attendance"
	"collegeattendance/internal/roster"
)

// Sections lists the known sections, led by the "All Sections" filter.
func (h *Handler) Sections(c *gin.Context) {
	sections := append([]string{roster.AllSections}, roster.Sections...)
	c.JSON(http.StatusOK, gin.H{"sections": sections})
}

// ListStudents returns the roster; with_photo=true narrows it to assisted-flow candidates.
func (h *Handler) ListStudents(c *gin.Context) {
	students, err := h.roster.List(c.Request.Context(), c.Query("with_photo") == "true")
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": students})
}

func (h *Handler) GetStudent(c *gin.Context) {
	st, err := h.roster.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) CreateStudent(c *gin.Context) {
	var in roster.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "malformed student body")
		return
	}
	st, err := h.roster.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, st)
}

func (h *Handler) UpdateStudent(c *gin.Context) {
	var in roster.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "malformed student body")
		return
	}
	st, err := h.roster.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) DeleteStudent(c *gin.Context) {
	if err := h.roster.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadPhoto replaces a student's reference photo from the multipart field "photo".
func (h *Handler) UploadPhoto(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxPhoto+1<<20)
	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		badRequest(c, "photo file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxPhoto+1))
	if err != nil {
		fail(c, err)
		return
	}
	if int64(len(data)) > h.maxPhoto {
		c.JSON(http.StatusRequestEntityTooLarge, errorBody{Title: "Error", Description: "Photo must be 5 MB or smaller."})
		return
	}
	st, err := h.roster.UploadPhoto(c.Request.Context(), c.Param("id"), header.Filename, data)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) StudentAttendance(c *gin.Context) {
	report, err := h.attendance.StudentStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// MyAttendance shows the signed-in user's own history. Users without a roster entry get
// an empty history.
func (h *Handler) MyAttendance(c *gin.Context) {
	id := userID(c)
	report, err := h.attendance.StudentStats(c.Request.Context(), id)
	if errors.Is(err, roster.ErrStudentNotFound) {
		c.JSON(http.StatusOK, attendance.StudentReport{StudentID: id, Records: []attendance.Record{}})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
