package auth

import (
	"context"

	"Parking/internal/domain/user"
	appErrors "Parking/internal/errors"

	"golang.org/x/crypto/bcrypt"
)

type Login struct {
	Email    string
	Password string
}

type Service struct {
	UserService *user.Service
}

func NewService(userSvc *user.Service) *Service {
	return &Service{UserService: userSvc}
}

func (s *Service) Login(ctx context.Context, login Login) (*user.User, error) {
	entity, err := s.UserService.GetByEmail(ctx, login.Email)
	if err != nil {
		if appErrors.HasCode(err, appErrors.ErrUserNotFound.Code) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := PasswordValidate(login.Password, entity.Password); err != nil {
		return nil, err
	}
	if !entity.IsActive {
		return nil, appErrors.ErrForbidden
	}
	return entity, nil
}

// Register creates an operator account. The first account ever created is
// always an admin; after that only an admin caller may register users.
func (s *Service) Register(ctx context.Context, caller *user.User, u *user.User) error {
	count, err := s.UserService.Count(ctx)
	if err != nil {
		return appErrors.NewDatabaseError(err)
	}
	if count == 0 {
		u.Role = user.RoleAdmin
	} else if caller == nil || caller.Role != user.RoleAdmin {
		return appErrors.ErrForbidden
	}

	exists, err := s.emailExists(ctx, u.Email)
	if err != nil {
		return err
	}
	if exists {
		return appErrors.ErrEmailAlreadyExists
	}
	if err := user.PasswordRequirements("password", u.Password); err != nil {
		return err
	}
	return s.UserService.Create(ctx, u)
}

func (s *Service) emailExists(ctx context.Context, email string) (bool, error) {
	_, err := s.UserService.GetByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	appErr, ok := appErrors.AsAppError(err)
	if !ok {
		return false, appErrors.ErrInternalServer.WithError(err)
	}
	if appErr.Code == appErrors.ErrUserNotFound.Code {
		return false, nil
	}
	return false, appErr
}

func PasswordValidate(inputPassword string, storedPassword string) error {
	if inputPassword == "" {
		return appErrors.NewValidationError("password", "is required")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(storedPassword), []byte(inputPassword)); err != nil {
		return appErrors.ErrInvalidCredentials
	}
	return nil
}
