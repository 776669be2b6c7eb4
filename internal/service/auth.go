package service

import (
	"errors"
	"strings"
	"time"

	"user-management-app/internal/domain"
	"user-management-app/pkg/utils"
)

var (
	// ErrInvalidCredentials indicates the email/password pair is wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountBlocked indicates the account exists but may not authenticate.
	ErrAccountBlocked = errors.New("account is blocked")
	// ErrEmailNotConfirmed is returned when the confirmation policy is on and
	// the account has not confirmed its email yet.
	ErrEmailNotConfirmed = errors.New("email not confirmed")
)

// AuthService verifies credentials and keeps LastLoginTime current.
type AuthService struct {
	users            domain.UserRepository
	requireConfirmed bool
}

func NewAuthService(users domain.UserRepository, requireConfirmed bool) *AuthService {
	return &AuthService{users: users, requireConfirmed: requireConfirmed}
}

// Authenticate checks the password, refuses blocked and unconfirmed accounts
// and touches LastLoginTime on success.
func (s *AuthService) Authenticate(email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	u, err := s.users.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if u.IsBlocked {
		return nil, ErrAccountBlocked
	}
	if s.requireConfirmed && !u.EmailConfirmed {
		return nil, ErrEmailNotConfirmed
	}
	u.LastLoginTime = time.Now().UTC()
	if err := s.users.Update(u); err != nil {
		return nil, err
	}
	return u, nil
}
