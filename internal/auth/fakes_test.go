package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"collegeattendance/internal/roster"
)

type refreshRow struct {
	userID  string
	expires time.Time
	revoked bool
}

type memStore struct {
	mu       sync.Mutex
	profiles map[string]account
	refresh  map[string]*refreshRow
}

func newMemStore() *memStore {
	return &memStore{profiles: map[string]account{}, refresh: map[string]*refreshRow{}}
}

func (m *memStore) CreateProfile(_ context.Context, a account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles {
		if strings.EqualFold(p.Email, a.Email) {
			return ErrEmailTaken
		}
	}
	m.profiles[a.ID] = a
	return nil
}

func (m *memStore) ProfileByEmail(_ context.Context, email string) (account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles {
		if strings.EqualFold(p.Email, email) {
			return p, nil
		}
	}
	return account{}, ErrAccountNotFound
}

func (m *memStore) ProfileByID(_ context.Context, id string) (account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return account{}, ErrAccountNotFound
	}
	return p, nil
}

func (m *memStore) SaveRefresh(_ context.Context, tokenID, userID string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refresh[tokenID] = &refreshRow{userID: userID, expires: expiresAt}
	return nil
}

func (m *memStore) UseRefresh(_ context.Context, tokenID string, now time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.refresh[tokenID]
	if !ok || row.revoked || !row.expires.After(now) {
		return "", ErrInvalidToken
	}
	row.revoked = true
	return row.userID, nil
}

func (m *memStore) RevokeRefresh(_ context.Context, tokenID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row, ok := m.refresh[tokenID]; ok {
		row.revoked = true
	}
	return nil
}

func (m *memStore) PurgeRefresh(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, row := range m.refresh {
		if row.revoked || !row.expires.After(now) {
			delete(m.refresh, id)
			n++
		}
	}
	return n, nil
}

type memRoles struct {
	admins map[string]bool
}

func (r *memRoles) GrantUser(_ context.Context, userID string) error {
	r.admins[userID] = true
	return nil
}

func (r *memRoles) IsAdmin(_ context.Context, userID string) (bool, error) {
	return r.admins[userID], nil
}

type rosterByEmail map[string]roster.Student

func (r rosterByEmail) FindByEmail(_ context.Context, email string) (roster.Student, error) {
	st, ok := r[strings.ToLower(email)]
	if !ok {
		return roster.Student{}, roster.ErrStudentNotFound
	}
	return st, nil
}
