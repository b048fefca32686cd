// Package auth owns accounts, sessions and the route guards built on them.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"collegeattendance/internal/roster"
	"collegeattendance/internal/validate"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrAccountNotFound    = errors.New("account not found")
)

// User is the public view of a signed-up account.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  *string   `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
	IsAdmin   bool      `json:"is_admin"`
}

type account struct {
	User
	passwordHash string
}

// Session is a signed-in user with a fresh token pair.
type Session struct {
	User   User      `json:"user"`
	Tokens TokenPair `json:"tokens"`
}

// SignUpInput is the sign-up form.
type SignUpInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	FullName string `json:"full_name" validate:"max=120"`
}

// Store is the persistence the account service needs.
type Store interface {
	CreateProfile(ctx context.Context, a account) error
	ProfileByEmail(ctx context.Context, email string) (account, error)
	ProfileByID(ctx context.Context, id string) (account, error)
	SaveRefresh(ctx context.Context, tokenID, userID string, expiresAt time.Time) error
	UseRefresh(ctx context.Context, tokenID string, now time.Time) (string, error)
	RevokeRefresh(ctx context.Context, tokenID string) error
	PurgeRefresh(ctx context.Context, now time.Time) (int64, error)
}

// Roles grants and checks the admin capability.
type Roles interface {
	GrantUser(ctx context.Context, userID string) error
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// RosterLookup finds the roster entry a new account belongs to.
type RosterLookup interface {
	FindByEmail(ctx context.Context, email string) (roster.Student, error)
}

// Config holds token settings.
type Config struct {
	Issuer              string
	SigningKey          string
	AccessTTL           time.Duration
	RefreshTTL          time.Duration
	BootstrapAdminEmail string
	// RosterLinkDomains lists the email domains whose holders take over a roster student
	// on sign-up. Empty disables linking.
	RosterLinkDomains []string
}

// Service signs users up and in and manages their sessions.
type Service struct {
	repo     Store
	roles    Roles
	roster   RosterLookup
	denylist Denylist
	cfg      Config
	cost     int
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithDenylist sets where signed-out access tokens are remembered.
func WithDenylist(d Denylist) Option { return func(s *Service) { s.denylist = d } }

// WithRoster links new accounts to roster students sharing their email.
func WithRoster(r RosterLookup) Option { return func(s *Service) { s.roster = r } }

// WithHashCost overrides the bcrypt cost.
func WithHashCost(cost int) Option { return func(s *Service) { s.cost = cost } }

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// NewService creates an account service.
func NewService(repo Store, roles Roles, cfg Config, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		roles:    roles,
		denylist: noDenylist{},
		cfg:      cfg,
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignUp creates an account and signs it in. When a roster student has the same email and
// that email is in a linkable domain, the account takes the student's id so the personal
// view shows that student's records. Ownership of the address is not verified.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (Session, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)
	if err := validate.Struct(in); err != nil {
		return Session{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	a := account{
		User: User{
			ID:        uuid.NewString(),
			Email:     in.Email,
			CreatedAt: s.now().UTC(),
		},
		passwordHash: string(hash),
	}
	if in.FullName != "" {
		a.FullName = &in.FullName
	}
	if s.roster != nil && s.linkable(in.Email) {
		st, err := s.roster.FindByEmail(ctx, in.Email)
		switch {
		case err == nil:
			a.ID = st.ID
			slog.Warn("account linked to roster student by email", "student_id", st.ID, "roll_number", st.RollNumber)
		case !errors.Is(err, roster.ErrStudentNotFound):
			return Session{}, err
		}
	}
	if err := s.repo.CreateProfile(ctx, a); err != nil {
		return Session{}, err
	}
	slog.Info("account created", "user_id", a.ID)

	if s.cfg.BootstrapAdminEmail != "" && a.Email == s.cfg.BootstrapAdminEmail {
		if err := s.roles.GrantUser(ctx, a.ID); err != nil {
			return Session{}, err
		}
		slog.Info("bootstrap admin granted", "user_id", a.ID)
	}
	return s.open(ctx, a.User)
}

func (s *Service) linkable(email string) bool {
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return false
	}
	domain := email[at+1:]
	for _, d := range s.cfg.RosterLinkDomains {
		if strings.EqualFold(strings.TrimPrefix(d, "@"), domain) {
			return true
		}
	}
	return false
}

// SignIn checks credentials and opens a session.
func (s *Service) SignIn(ctx context.Context, email, password string) (Session, error) {
	a, err := s.repo.ProfileByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, ErrAccountNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(a.passwordHash), []byte(password)) != nil {
		return Session{}, ErrInvalidCredentials
	}
	return s.open(ctx, a.User)
}

// Refresh exchanges a refresh token for a new pair. The old refresh token stops working.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	claims, err := Parse(refreshToken, s.cfg.SigningKey, s.cfg.Issuer, KindRefresh, s.now)
	if err != nil {
		return Session{}, ErrInvalidToken
	}
	userID, err := s.repo.UseRefresh(ctx, claims.ID, s.now())
	if err != nil {
		return Session{}, err
	}
	a, err := s.repo.ProfileByID(ctx, userID)
	if errors.Is(err, ErrAccountNotFound) {
		return Session{}, ErrInvalidToken
	}
	if err != nil {
		return Session{}, err
	}
	return s.open(ctx, a.User)
}

// SignOut revokes the refresh token, if any, and denies the access token until it expires.
func (s *Service) SignOut(ctx context.Context, access Claims, refreshToken string) error {
	if refreshToken != "" {
		if rc, err := Parse(refreshToken, s.cfg.SigningKey, s.cfg.Issuer, KindRefresh, s.now); err == nil {
			if err := s.repo.RevokeRefresh(ctx, rc.ID); err != nil {
				return err
			}
		}
	}
	var ttl time.Duration
	if access.ExpiresAt != nil {
		ttl = access.ExpiresAt.Sub(s.now())
	}
	if err := s.denylist.Deny(ctx, access.ID, ttl); err != nil {
		return fmt.Errorf("deny access token: %w", err)
	}
	slog.Info("signed out", "user_id", access.UserID())
	return nil
}

// Authenticate validates an access token and checks it was not signed out.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (Claims, error) {
	claims, err := Parse(accessToken, s.cfg.SigningKey, s.cfg.Issuer, KindAccess, s.now)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	denied, err := s.denylist.Denied(ctx, claims.ID)
	if err != nil {
		return Claims{}, err
	}
	if denied {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// Me returns the current user with their admin flag.
func (s *Service) Me(ctx context.Context, userID string) (User, error) {
	a, err := s.repo.ProfileByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	u := a.User
	if u.IsAdmin, err = s.roles.IsAdmin(ctx, u.ID); err != nil {
		return User{}, err
	}
	return u, nil
}

// PurgeExpired deletes dead refresh tokens.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.PurgeRefresh(ctx, s.now())
}

func (s *Service) open(ctx context.Context, u User) (Session, error) {
	pair, err := Issue(u.ID, s.cfg.Issuer, s.cfg.SigningKey, s.cfg.AccessTTL, s.cfg.RefreshTTL, s.now())
	if err != nil {
		return Session{}, fmt.Errorf("issue tokens: %w", err)
	}
	if err := s.repo.SaveRefresh(ctx, pair.refreshID, u.ID, pair.RefreshExp); err != nil {
		return Session{}, err
	}
	if u.IsAdmin, err = s.roles.IsAdmin(ctx, u.ID); err != nil {
		return Session{}, err
	}
	return Session{User: u, Tokens: pair}, nil
}
