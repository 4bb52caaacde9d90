package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"Parking/config"
	"Parking/internal/domain/user"
	appErrors "Parking/internal/errors"
	"Parking/internal/pkg"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsers map[ulid.ULID]*user.User

func (s stubUsers) GetByID(ctx context.Context, id ulid.ULID) (*user.User, error) {
	u, ok := s[id]
	if !ok {
		return nil, appErrors.ErrUserNotFound
	}
	return u, nil
}

func newTestJwt(t *testing.T, users UserLookup) *JwtService {
	t.Helper()
	svc, err := NewJwtService(config.JWTConfig{Secret: "test-secret", TTL: time.Hour, Issuer: "parking-test"}, users)
	require.NoError(t, err)
	return svc
}

func TestNewJwtServiceValidatesConfig(t *testing.T) {
	_, err := NewJwtService(config.JWTConfig{TTL: time.Hour}, nil)
	assert.Error(t, err)

	_, err = NewJwtService(config.JWTConfig{Secret: "s"}, nil)
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newTestJwt(t, nil)
	u := &user.User{Id: pkg.NewID(), Email: "op@example.com", Role: user.RoleOperator}

	token, expires, err := svc.GenerateToken(u)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.Id.String(), claims.Subject)
	assert.Equal(t, "OPERATOR", claims.Role)
	assert.Equal(t, "op@example.com", claims.Email)
}

func TestParseTokenRejectsExpiredAndForeign(t *testing.T) {
	svc := newTestJwt(t, nil)
	u := &user.User{Id: pkg.NewID(), Role: user.RoleAdmin}

	issued := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }
	token, _, err := svc.GenerateToken(u)
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = svc.ParseToken(token)
	assert.True(t, appErrors.HasCode(err, "UNAUTHORIZED"))

	other, err := NewJwtService(config.JWTConfig{Secret: "test-secret", TTL: time.Hour, Issuer: "someone-else"}, nil)
	require.NoError(t, err)
	other.now = func() time.Time { return issued }
	svc.now = func() time.Time { return issued }
	foreign, _, err := other.GenerateToken(u)
	require.NoError(t, err)
	_, err = svc.ParseToken(foreign)
	assert.Error(t, err)

	_, err = svc.ParseToken("not-a-token")
	assert.Error(t, err)
}

func protectedRouter(svc *JwtService, min user.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ok", AuthMiddleware(svc), RequireRole(min), func(c *gin.Context) {
		role, _ := c.Get(ContextRole)
		c.String(http.StatusOK, string(role.(user.Role)))
	})
	return r
}

func call(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	viewer := &user.User{Id: pkg.NewID(), Role: user.RoleViewer, IsActive: true}
	admin := &user.User{Id: pkg.NewID(), Role: user.RoleAdmin, IsActive: true}
	disabled := &user.User{Id: pkg.NewID(), Role: user.RoleAdmin, IsActive: false}
	svc := newTestJwt(t, stubUsers{viewer.Id: viewer, admin.Id: admin, disabled.Id: disabled})

	token := func(u *user.User) string {
		s, _, err := svc.GenerateToken(u)
		require.NoError(t, err)
		return s
	}

	r := protectedRouter(svc, user.RoleOperator)

	assert.Equal(t, http.StatusUnauthorized, call(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, "garbage").Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, token(disabled)).Code)

	w := call(r, token(viewer))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "required_role")

	w = call(r, token(admin))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ADMIN", w.Body.String())
}

func TestAuthMiddlewareUsesCurrentRole(t *testing.T) {
	u := &user.User{Id: pkg.NewID(), Role: user.RoleAdmin, IsActive: true}
	users := stubUsers{u.Id: u}
	svc := newTestJwt(t, users)
	token, _, err := svc.GenerateToken(u)
	require.NoError(t, err)

	// demoted after the token was issued
	users[u.Id] = &user.User{Id: u.Id, Role: user.RoleViewer, IsActive: true}

	r := protectedRouter(svc, user.RoleAdmin)
	assert.Equal(t, http.StatusForbidden, call(r, token).Code)
}
