package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"Parking/config"
	"Parking/internal/contracts"
	"Parking/internal/domain/auth"
	"Parking/internal/domain/holiday"
	"Parking/internal/domain/shared"
	"Parking/internal/domain/tariff"
	"Parking/internal/domain/user"
	appErrors "Parking/internal/errors"
	"Parking/internal/middleware"
	"Parking/internal/pkg/query"
	"Parking/internal/routes"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryUsers struct {
	mu    sync.Mutex
	users map[ulid.ULID]*user.User
}

func (m *memoryUsers) Create(ctx context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.Id] = &cp
	return nil
}

func (m *memoryUsers) Update(ctx context.Context, u *user.User) error { return m.Create(ctx, u) }

func (m *memoryUsers) GetByID(ctx context.Context, id ulid.ULID) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, appErrors.ErrUserNotFound
}

func (m *memoryUsers) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, appErrors.ErrUserNotFound
}

func (m *memoryUsers) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

func (m *memoryUsers) List(ctx context.Context) ([]*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*user.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

type staticTariffs struct {
	active []*tariff.Tariff
}

func (s *staticTariffs) Create(ctx context.Context, t *tariff.Tariff) error { return nil }
func (s *staticTariffs) Update(ctx context.Context, t *tariff.Tariff) error { return nil }
func (s *staticTariffs) Delete(ctx context.Context, id ulid.ULID) error     { return nil }

func (s *staticTariffs) GetByID(ctx context.Context, id ulid.ULID) (*tariff.Tariff, error) {
	return nil, appErrors.ErrTariffNotFound
}

func (s *staticTariffs) List(ctx context.Context, filter tariff.Filter, page query.Page) (*query.Result[*tariff.Tariff], error) {
	return query.NewResult(s.active, page, int64(len(s.active))), nil
}

func (s *staticTariffs) ListActive(ctx context.Context) ([]*tariff.Tariff, error) {
	return s.active, nil
}

type emptyCalendar struct{}

func (emptyCalendar) Calendar(ctx context.Context) (*holiday.Calendar, error) {
	return holiday.NewCalendar(nil, time.UTC), nil
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type testServer struct {
	router *gin.Engine
	users  *memoryUsers
	jwt    *middleware.JwtService
}

func newTestServer(t *testing.T, health routes.Pinger) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := &memoryUsers{users: map[ulid.ULID]*user.User{}}
	userSvc := user.NewService(users)
	jwtSvc, err := middleware.NewJwtService(config.JWTConfig{Secret: "test-secret", TTL: time.Hour, Issuer: "test"}, userSvc)
	require.NoError(t, err)

	tariffs := &staticTariffs{active: []*tariff.Tariff{{
		Id:          ulid.Make(),
		Name:        "standard",
		VehicleType: shared.VehicleCar,
		EntranceFee: 5000,
		FreeMinutes: 15,
		HourlyRate:  10000,
		ValidFrom:   time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		IsActive:    true,
	}}}

	h := &routes.Handler{
		UserService:   userSvc,
		AuthService:   auth.NewService(userSvc),
		JwtService:    jwtSvc,
		TariffService: tariff.NewService(tariffs, emptyCalendar{}),
		Health:        health,
		Location:      time.UTC,
	}
	router := gin.New()
	routes.Register(router, h, routes.RouterOptions{
		AuthLimiter: middleware.NewRateLimiter(100, time.Minute),
		UserLimiter: middleware.NewRateLimiter(100, time.Minute),
	})
	return &testServer{router: router, users: users, jwt: jwtSvc}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// seedUser stores a user directly and returns a signed token for it.
func (s *testServer) seedUser(t *testing.T, role user.Role) string {
	t.Helper()
	u := &user.User{Id: ulid.Make(), Email: string(role) + "@lot.test", Role: role, IsActive: true}
	require.NoError(t, s.users.Create(context.Background(), u))
	token, _, err := s.jwt.GenerateToken(u)
	require.NoError(t, err)
	return token
}

func TestRegisterBootstrapsAdminThenLogin(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodPost, "/api/auth/register", "", contracts.RegisterRequest{
		Name:     "Desk Admin",
		Email:    "Admin@Lot.test",
		Password: "Str0ng!pass",
		Role:     "VIEWER",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var reg contracts.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
	assert.Equal(t, user.RoleAdmin, reg.User.Role)
	assert.Equal(t, "admin@lot.test", reg.User.Email)

	// a second anonymous registration is refused
	rec = srv.do(t, http.MethodPost, "/api/auth/register", "", contracts.RegisterRequest{
		Name: "Intruder", Email: "x@lot.test", Password: "Str0ng!pass",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/auth/login", "", contracts.LoginRequest{
		Email: "ADMIN@lot.test", Password: "Str0ng!pass",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var login contracts.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)

	rec = srv.do(t, http.MethodGet, "/api/users/me", login.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/auth/login", "", contracts.LoginRequest{
		Email: "admin@lot.test", Password: "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoleTiers(t *testing.T) {
	srv := newTestServer(t, nil)
	viewer := srv.seedUser(t, user.RoleViewer)
	admin := srv.seedUser(t, user.RoleAdmin)

	body := contracts.TariffCreateRequest{Name: "night", VehicleType: "CAR", HourlyRate: 1000}

	rec := srv.do(t, http.MethodPost, "/api/tariffs", viewer, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/tariffs", viewer, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/users", viewer, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/users", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/tariffs", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCalculateFeeEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	token := srv.seedUser(t, user.RoleOperator)

	entry := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	rec := srv.do(t, http.MethodPost, "/api/tariffs/calculate", token, contracts.FeeCalculateRequest{
		EntryTime:   entry,
		ExitTime:    entry.Add(2 * time.Hour),
		VehicleType: "CAR",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var quote tariff.Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	assert.Equal(t, "standard", quote.Tariff.Name)
	assert.Equal(t, 120, quote.Fee.DurationMinutes)
	assert.Positive(t, quote.Fee.Amount)

	rec = srv.do(t, http.MethodPost, "/api/tariffs/calculate", token, contracts.FeeCalculateRequest{
		EntryTime:   entry,
		ExitTime:    entry.Add(time.Hour),
		VehicleType: "BUS",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestValidationErrorsAreReported(t *testing.T) {
	srv := newTestServer(t, nil)
	token := srv.seedUser(t, user.RoleOperator)

	rec := srv.do(t, http.MethodPost, "/api/tariffs/calculate", token, map[string]any{
		"entryTime": time.Now(),
		"exitTime":  time.Now(),
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var payload struct {
		Error   string         `json:"error"`
		Details map[string]any `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "VALIDATION_ERROR", payload.Error)
	assert.Contains(t, payload.Details, "fields")

	rec = srv.do(t, http.MethodGet, "/api/tariffs/not-an-id", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	healthy := newTestServer(t, pingerFunc(func(ctx context.Context) error { return nil }))
	rec := healthy.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"up"`)

	down := newTestServer(t, pingerFunc(func(ctx context.Context) error { return errors.New("connection refused") }))
	rec = down.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
