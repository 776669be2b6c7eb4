package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-management-app/internal/domain"
	"user-management-app/pkg/utils"
)

func seedAccount(repo *memRepo, email, password string, blocked, confirmed bool) domain.User {
	u := domain.User{
		ID:             "uid-" + email,
		UserName:       email,
		Email:          email,
		PasswordHash:   utils.HashPassword(password),
		IsBlocked:      blocked,
		EmailConfirmed: confirmed,
		LastLoginTime:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	repo.put(u)
	return u
}

func TestAuthenticate_Success(t *testing.T) {
	repo := newMemRepo()
	svc := NewAuthService(repo, false)
	seeded := seedAccount(repo, "a@example.com", "pw", false, false)

	u, err := svc.Authenticate("a@example.com", "pw")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.True(t, u.LastLoginTime.After(seeded.LastLoginTime), "login must touch LastLoginTime")

	stored, _ := repo.get(seeded.ID)
	assert.Equal(t, u.LastLoginTime, stored.LastLoginTime)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	repo := newMemRepo()
	svc := NewAuthService(repo, false)
	seedAccount(repo, "a@example.com", "pw", false, false)

	_, err := svc.Authenticate("a@example.com", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_UnknownEmail(t *testing.T) {
	repo := newMemRepo()
	svc := NewAuthService(repo, false)

	_, err := svc.Authenticate("ghost@example.com", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_BlockedAccountRefused(t *testing.T) {
	repo := newMemRepo()
	svc := NewAuthService(repo, false)
	seeded := seedAccount(repo, "a@example.com", "pw", true, false)

	_, err := svc.Authenticate("a@example.com", "pw")
	assert.ErrorIs(t, err, ErrAccountBlocked)

	// refused logins must not touch LastLoginTime
	stored, _ := repo.get(seeded.ID)
	assert.Equal(t, seeded.LastLoginTime, stored.LastLoginTime)
}

func TestAuthenticate_ConfirmationPolicy(t *testing.T) {
	repo := newMemRepo()
	seedAccount(repo, "a@example.com", "pw", false, false)

	// policy off: unconfirmed account may sign in
	_, err := NewAuthService(repo, false).Authenticate("a@example.com", "pw")
	require.NoError(t, err)

	// policy on: refused until confirmed
	_, err = NewAuthService(repo, true).Authenticate("a@example.com", "pw")
	assert.ErrorIs(t, err, ErrEmailNotConfirmed)
}

func TestAuthenticate_EmptyInput(t *testing.T) {
	repo := newMemRepo()
	svc := NewAuthService(repo, false)

	_, err := svc.Authenticate("", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate("a@example.com", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
