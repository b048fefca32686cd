package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const claimsKey = "claims"

// Authenticator validates access tokens.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (Claims, error)
}

// RoleChecker answers whether a user holds the admin capability.
type RoleChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// RequireSession enforces a bearer access token that has not been signed out.
func RequireSession(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"title": "Unauthorized", "description": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimSpace(authz[len("bearer "):])
		claims, err := a.Authenticate(c.Request.Context(), tokenStr)
		if errors.Is(err, ErrInvalidToken) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"title": "Unauthorized", "description": "invalid token"})
			return
		}
		if err != nil {
			slog.Error("authenticate failed", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"title": "Error", "description": "could not verify session"})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireAdmin lets admins through; other signed-in users are sent to their own view.
// It must run after RequireSession.
func RequireAdmin(roles RoleChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"title": "Unauthorized", "description": "sign in required"})
			return
		}
		isAdmin, err := roles.IsAdmin(c.Request.Context(), claims.UserID())
		if err != nil {
			slog.Error("role check failed", "user_id", claims.UserID(), "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"title": "Error", "description": "could not verify role"})
			return
		}
		if !isAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"title":       "Forbidden",
				"description": "admin access required",
				"redirect":    "/my-attendance",
			})
			return
		}
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by RequireSession.
func ClaimsFrom(c *gin.Context) (Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return Claims{}, false
	}
	claims, ok := v.(Claims)
	return claims, ok
}
