package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"Parking/config"
	"Parking/internal/domain/user"
	appErrors "Parking/internal/errors"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

type Claims struct {
	Role  string `json:"role"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserLookup lets the middleware reject tokens of deactivated operators.
type UserLookup interface {
	GetByID(ctx context.Context, id ulid.ULID) (*user.User, error)
}

type JwtService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	users  UserLookup
	now    func() time.Time
}

func NewJwtService(cfg config.JWTConfig, users UserLookup) (*JwtService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("jwt ttl must be positive")
	}
	return &JwtService{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		issuer: cfg.Issuer,
		users:  users,
		now:    time.Now,
	}, nil
}

func (s *JwtService) GenerateToken(u *user.User) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := Claims{
		Role:  string(u.Role),
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Id.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, appErrors.ErrInternalServer.WithError(err)
	}
	return signed, expires, nil
}

func (s *JwtService) ParseToken(tokenStr string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, appErrors.ErrUnauthorized.WithError(err)
	}
	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, appErrors.ErrUnauthorized
	}
	return claims, nil
}

// AuthMiddleware accepts "Authorization: Bearer <token>" and stores the
// operator id and role on the context.
func AuthMiddleware(jwtSvc *JwtService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			respondAbort(c, appErrors.ErrUnauthorized)
			return
		}
		claims, err := jwtSvc.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			respondAbort(c, appErrors.ErrUnauthorized)
			return
		}

		if jwtSvc.users != nil {
			id, err := ulid.Parse(claims.Subject)
			if err != nil {
				respondAbort(c, appErrors.ErrUnauthorized)
				return
			}
			u, err := jwtSvc.users.GetByID(c.Request.Context(), id)
			if err != nil || !u.IsActive {
				respondAbort(c, appErrors.ErrUnauthorized)
				return
			}
			claims.Role = string(u.Role)
		}

		c.Set(ContextUserID, claims.Subject)
		c.Set(ContextRole, user.Role(claims.Role))
		c.Next()
	}
}

// RequireRole lets through callers whose role is at least min.
func RequireRole(min user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, _ := c.Get(ContextRole)
		role, _ := v.(user.Role)
		if !role.Allows(min) {
			err := appErrors.ErrForbidden.WithDetails(map[string]interface{}{
				"required_role": string(min),
				"current_role":  string(role),
			})
			respondAbort(c, err)
			return
		}
		c.Next()
	}
}
