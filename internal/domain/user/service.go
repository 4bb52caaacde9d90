package user

import (
	"context"
	"regexp"
	"strings"
	"time"

	appErrors "Parking/internal/errors"
	"Parking/internal/pkg"

	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

type Service struct {
	Repository Repository
}

func NewService(repo Repository) *Service {
	return &Service{Repository: repo}
}

func (s *Service) Create(ctx context.Context, u *User) error {
	u.Id = pkg.NewID()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = RoleOperator
	}
	if !u.Role.IsValid() {
		return appErrors.NewValidationError("role", "is invalid")
	}
	u.IsActive = true

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	hashed, err := HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed

	return s.Repository.Create(ctx, u)
}

func (s *Service) GetByID(ctx context.Context, id ulid.ULID) (*User, error) {
	return s.Repository.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.Repository.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.Repository.List(ctx)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.Repository.Count(ctx)
}

// Exists fails with ErrForbidden for deactivated operators so that a valid
// token of a disabled user is rejected.
func (s *Service) Exists(ctx context.Context, id ulid.ULID) error {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !u.IsActive {
		return appErrors.ErrForbidden
	}
	return nil
}

func (s *Service) UpdateRole(ctx context.Context, id ulid.ULID, role Role, active *bool) (*User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role != "" {
		if !role.IsValid() {
			return nil, appErrors.NewValidationError("role", "is invalid")
		}
		u.Role = role
	}
	if active != nil {
		u.IsActive = *active
	}
	u.UpdatedAt = time.Now()
	if err := s.Repository.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) UpdatePassword(ctx context.Context, id ulid.ULID, currentPassword, newPassword string) error {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(currentPassword)); err != nil {
		return appErrors.ErrInvalidCredentials
	}
	if err := PasswordRequirements("new_password", newPassword); err != nil {
		return err
	}
	hashed, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	u.Password = hashed
	u.UpdatedAt = time.Now()
	return s.Repository.Update(ctx, u)
}

var (
	upperRe   = regexp.MustCompile(`[A-Z]`)
	specialRe = regexp.MustCompile(`[@$!%*?&]`)
)

func PasswordRequirements(field, password string) error {
	if len(password) < 8 {
		return appErrors.NewValidationError(field, "must be at least 8 characters long")
	}
	if !upperRe.MatchString(password) {
		return appErrors.NewValidationError(field, "must contain an upper case letter")
	}
	if !specialRe.MatchString(password) {
		return appErrors.NewValidationError(field, "must contain a special character (@$!%*?&)")
	}
	return nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", appErrors.ErrInternalServer.WithError(err)
	}
	return string(hash), nil
}
