package service

import (
	"strings"
	"time"

	"user-management-app/internal/domain"
	"user-management-app/pkg/utils"
)

// FieldErrors maps input field names to messages; the empty key carries
// form-level messages, the way the original registration page reported them.
type FieldErrors map[string]string

type RegisterInput struct {
	UserName        string
	Email           string
	Password        string
	ConfirmPassword string
}

// RegisterService creates user accounts.
type RegisterService struct {
	users domain.UserRepository
}

func NewRegisterService(users domain.UserRepository) *RegisterService {
	return &RegisterService{users: users}
}

// Register validates input, checks email uniqueness and creates the account
// with a hashed password. Recoverable problems come back as FieldErrors with a
// nil error; a non-nil error means an unexpected store failure the caller
// should log and report generically.
func (s *RegisterService) Register(in RegisterInput) (*domain.User, FieldErrors, error) {
	if errs := validateRegister(in); len(errs) > 0 {
		return nil, errs, nil
	}

	existing, err := s.users.FindByEmail(in.Email)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return nil, FieldErrors{"email": "This email address is already registered."}, nil
	}

	now := time.Now().UTC()
	u := &domain.User{
		ID:               utils.NewID(),
		UserName:         in.UserName,
		Email:            in.Email,
		PasswordHash:     utils.HashPassword(in.Password),
		RegistrationDate: now,
		LastLoginTime:    now,
	}

	if err := s.users.Create(u); err != nil {
		// 唯一索引兜底：预检查和插入之间并发注册可能撞车
		if isDupKey(err) {
			if strings.Contains(strings.ToLower(err.Error()), "user_name") {
				return nil, FieldErrors{"userName": "Username '" + in.UserName + "' is already taken."}, nil
			}
			return nil, FieldErrors{"": "An unexpected error occurred during registration."}, nil
		}
		return nil, nil, err
	}
	return u, nil, nil
}

// ConfirmEmail marks the account's email address as confirmed.
func (s *RegisterService) ConfirmEmail(uid string) error {
	u, err := s.users.FindByID(uid)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrInvalidCredentials
	}
	if u.EmailConfirmed {
		return nil
	}
	u.EmailConfirmed = true
	return s.users.Update(u)
}

func validateRegister(in RegisterInput) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(in.UserName) == "" {
		errs["userName"] = "The Username field is required."
	}
	if strings.TrimSpace(in.Email) == "" {
		errs["email"] = "The Email field is required."
	} else if !strings.Contains(in.Email, "@") {
		errs["email"] = "The Email field is not a valid e-mail address."
	}
	if in.Password == "" {
		errs["password"] = "The Password field is required."
	} else if len(in.Password) > 100 {
		errs["password"] = "The Password must be at least 1 and at max 100 characters long."
	}
	if _, ok := errs["password"]; !ok && in.Password != in.ConfirmPassword {
		errs["confirmPassword"] = "The password and confirmation password do not match."
	}
	return errs
}

func isDupKey(err error) bool {
	// 不依赖 gorm.ErrDuplicatedKey，避免驱动/版本差异
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "unique failed")
}
