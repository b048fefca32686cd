package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"collegeattendance/internal/holiday"
)

func (h *Handler) ListHolidays(c *gin.Context) {
	list, err := h.holidays.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"holidays": list})
}

func (h *Handler) CreateHoliday(c *gin.Context) {
	var in holiday.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "malformed holiday body")
		return
	}
	created, err := h.holidays.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) DeleteHoliday(c *gin.Context) {
	if err := h.holidays.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
