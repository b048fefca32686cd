package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticAuth map[string]Claims

func (s staticAuth) Authenticate(_ context.Context, token string) (Claims, error) {
	c, ok := s[token]
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	return c, nil
}

type staticRoles map[string]bool

func (s staticRoles) IsAdmin(_ context.Context, userID string) (bool, error) { return s[userID], nil }

func guardedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	tokens := staticAuth{
		"admin-token":   withSubject(Claims{Kind: KindAccess}, "admin-1"),
		"student-token": withSubject(Claims{Kind: KindAccess}, "student-1"),
	}

	r.GET("/admin", RequireSession(tokens), RequireAdmin(staticRoles{"admin-1": true}), func(c *gin.Context) {
		claims, _ := ClaimsFrom(c)
		c.JSON(http.StatusOK, gin.H{"user": claims.UserID()})
	})
	return r
}

func withSubject(c Claims, sub string) Claims {
	c.Subject = sub
	return c
}

func TestGuards(t *testing.T) {
	r := guardedRouter()

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"student", "Bearer student-token", http.StatusForbidden},
		{"admin", "bearer admin-token", http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestForbiddenRedirectsToPersonalView(t *testing.T) {
	r := guardedRouter()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer student-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "/my-attendance", body["redirect"])
	assert.Equal(t, "Forbidden", body["title"])
}
