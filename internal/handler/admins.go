package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"collegeattendance/internal/admin"
)

func (h *Handler) ListAdmins(c *gin.Context) {
	list, err := h.admins.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"admins": list})
}

// GrantAdmin gives the admin capability to the signed-up user with the posted email.
func (h *Handler) GrantAdmin(c *gin.Context) {
	var in admin.GrantInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "email is required")
		return
	}
	p, err := h.admins.Grant(c.Request.Context(), in.Email)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// RevokeAdmin removes the grant; revoking a non-admin still succeeds.
func (h *Handler) RevokeAdmin(c *gin.Context) {
	if err := h.admins.Revoke(c.Request.Context(), c.Param("user_id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
