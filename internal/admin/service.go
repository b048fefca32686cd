package admin

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"collegeattendance/internal/metrics"
	"collegeattendance/internal/validate"
)

// Store is the persistence the admin service needs.
type Store interface {
	FindProfileByEmail(ctx context.Context, email string) (Profile, error)
	InsertGrant(ctx context.Context, userID, role string) error
	DeleteGrant(ctx context.Context, userID, role string) error
	ListGrantUserIDs(ctx context.Context, role string) ([]string, error)
	ProfilesByIDs(ctx context.Context, ids []string) ([]Profile, error)
	HasRole(ctx context.Context, userID, role string) (bool, error)
}

// Service grants, revokes and checks the admin capability.
type Service struct {
	repo Store
}

// NewService creates an admin service.
func NewService(repo Store) *Service {
	return &Service{repo: repo}
}

// Grant makes the user with email an admin. An unknown email yields ErrUserNotFound and
// changes nothing; an existing grant yields ErrAlreadyAdmin.
func (s *Service) Grant(ctx context.Context, email string) (Profile, error) {
	in := GrantInput{Email: strings.TrimSpace(email)}
	if err := validate.Struct(in); err != nil {
		return Profile{}, err
	}
	p, err := s.repo.FindProfileByEmail(ctx, in.Email)
	if err != nil {
		record("grant", err)
		return Profile{}, err
	}
	if err := s.repo.InsertGrant(ctx, p.ID, RoleAdmin); err != nil {
		record("grant", err)
		return Profile{}, err
	}
	record("grant", nil)
	slog.Info("admin granted", "user_id", p.ID)
	return p, nil
}

// GrantUser gives userID the admin grant, treating an existing grant as success.
func (s *Service) GrantUser(ctx context.Context, userID string) error {
	err := s.repo.InsertGrant(ctx, userID, RoleAdmin)
	if errors.Is(err, ErrAlreadyAdmin) {
		return nil
	}
	record("grant", err)
	return err
}

// Revoke removes the admin grant of userID. Revoking a non-admin succeeds.
func (s *Service) Revoke(ctx context.Context, userID string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return validate.Errorf("user_id must be a UUID")
	}
	if err := s.repo.DeleteGrant(ctx, userID, RoleAdmin); err != nil {
		record("revoke", err)
		return err
	}
	record("revoke", nil)
	slog.Info("admin revoked", "user_id", userID)
	return nil
}

// List returns the profiles of all admins in grant order.
func (s *Service) List(ctx context.Context) ([]Profile, error) {
	ids, err := s.repo.ListGrantUserIDs(ctx, RoleAdmin)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []Profile{}, nil
	}
	profiles, err := s.repo.ProfilesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}
	out := make([]Profile, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// IsAdmin reports whether userID holds the admin grant.
func (s *Service) IsAdmin(ctx context.Context, userID string) (bool, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return false, nil
	}
	return s.repo.HasRole(ctx, userID, RoleAdmin)
}

func record(op string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrUserNotFound):
		outcome = "not_found"
	case errors.Is(err, ErrAlreadyAdmin):
		outcome = "already_admin"
	default:
		outcome = "error"
	}
	metrics.AdminGrants.WithLabelValues(op, outcome).Inc()
}
