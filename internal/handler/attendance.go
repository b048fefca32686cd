package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"collegeattendance/internal/attendance"
)

type manualRequest struct {
	Marks map[string]attendance.Status `json:"marks"`
	All   attendance.Status            `json:"all"`
}

type assistedRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	Period    int    `json:"period"`
}

func (h *Handler) Dashboard(c *gin.Context) {
	stats, err := h.attendance.Dashboard(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// AttendanceForDate returns the statuses stored for ?date=, defaulting to today.
func (h *Handler) AttendanceForDate(c *gin.Context) {
	date := c.DefaultQuery("date", h.attendance.Today())
	marks, err := h.attendance.ForDate(c.Request.Context(), date)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "marks": marks})
}

// SaveManual replaces the day's attendance with the submitted marks, or with one status
// for every student when "all" is set.
func (h *Handler) SaveManual(c *gin.Context) {
	var req manualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed attendance body")
		return
	}
	date := c.Param("date")

	var (
		records []attendance.Record
		err     error
	)
	if req.All != "" {
		records, err = h.attendance.MarkAll(c.Request.Context(), date, req.All, userID(c))
	} else {
		records, err = h.attendance.SaveManual(c.Request.Context(), date, req.Marks, userID(c))
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "saved": len(records), "records": records})
}

func (h *Handler) MarkAssisted(c *gin.Context) {
	var req assistedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "student_id and period are required")
		return
	}
	rec, err := h.attendance.MarkAssisted(c.Request.Context(), req.StudentID, req.Period, userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}
