package auth_test

import (
	"context"
	"testing"

	"Parking/internal/domain/auth"
	"Parking/internal/domain/user"
	appErrors "Parking/internal/errors"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepository struct {
	users map[string]*user.User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[string]*user.User)}
}

func (f *fakeUserRepository) Create(ctx context.Context, u *user.User) error {
	cp := *u
	f.users[u.Email] = &cp
	return nil
}

func (f *fakeUserRepository) Update(ctx context.Context, u *user.User) error {
	cp := *u
	f.users[u.Email] = &cp
	return nil
}

func (f *fakeUserRepository) GetByID(ctx context.Context, id ulid.ULID) (*user.User, error) {
	for _, u := range f.users {
		if u.Id == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, appErrors.ErrUserNotFound
}

func (f *fakeUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, appErrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepository) Count(ctx context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

func (f *fakeUserRepository) List(ctx context.Context) ([]*user.User, error) {
	out := make([]*user.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func TestRegisterBootstrapsAdmin(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepository()
	svc := auth.NewService(user.NewService(repo))
	ctx := context.Background()

	first := &user.User{Name: "Admin", Email: "Admin@Parking.ir ", Password: "Sup3r$ecret", Role: user.RoleViewer}
	require.NoError(t, svc.Register(ctx, nil, first))
	assert.Equal(t, user.RoleAdmin, first.Role)
	assert.Equal(t, "admin@parking.ir", first.Email)
	assert.NotEqual(t, "Sup3r$ecret", first.Password)

	second := &user.User{Name: "Gate", Email: "gate@parking.ir", Password: "Gate$Pass1"}
	err := svc.Register(ctx, nil, second)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	operator := &user.User{Role: user.RoleOperator}
	err = svc.Register(ctx, operator, second)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	require.NoError(t, svc.Register(ctx, first, second))
	assert.Equal(t, user.RoleOperator, second.Role)

	dup := &user.User{Name: "Gate", Email: "gate@parking.ir", Password: "Gate$Pass1"}
	assert.ErrorIs(t, svc.Register(ctx, first, dup), appErrors.ErrEmailAlreadyExists)
}

func TestRegisterPasswordRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
	}{
		{name: "too short", password: "Ab$1"},
		{name: "no upper case", password: "abcdefg$1"},
		{name: "no special character", password: "Abcdefgh1"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := auth.NewService(user.NewService(newFakeUserRepository()))
			err := svc.Register(context.Background(), nil, &user.User{Name: "x", Email: "x@y.z", Password: tt.password})
			assert.True(t, appErrors.HasCode(err, "VALIDATION_ERROR"), "got %v", err)
		})
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepository()
	svc := auth.NewService(user.NewService(repo))
	ctx := context.Background()
	require.NoError(t, svc.Register(ctx, nil, &user.User{Name: "Admin", Email: "admin@parking.ir", Password: "Sup3r$ecret"}))

	u, err := svc.Login(ctx, auth.Login{Email: "ADMIN@parking.ir", Password: "Sup3r$ecret"})
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, u.Role)

	_, err = svc.Login(ctx, auth.Login{Email: "admin@parking.ir", Password: "wrong"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, auth.Login{Email: "nobody@parking.ir", Password: "Sup3r$ecret"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	repo.users["admin@parking.ir"].IsActive = false
	_, err = svc.Login(ctx, auth.Login{Email: "admin@parking.ir", Password: "Sup3r$ecret"})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}
