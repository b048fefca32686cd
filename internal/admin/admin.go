// Package admin manages which signed-up users hold the admin capability.
package admin

import (
	"errors"
	"time"
)

// RoleAdmin is the only role granted through this package.
const RoleAdmin = "admin"

var (
	// ErrUserNotFound means no profile has the requested email.
	ErrUserNotFound = errors.New("user not found")
	// ErrAlreadyAdmin means the user already holds the admin grant.
	ErrAlreadyAdmin = errors.New("user is already an admin")
)

// Profile is the public part of a signed-up user.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  *string   `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}

// GrantInput is the payload of a grant request.
type GrantInput struct {
	Email string `json:"email" validate:"required,email"`
}
