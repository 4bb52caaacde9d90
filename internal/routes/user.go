package routes

import (
	"net/http"
	"strings"

	"Parking/internal/contracts"
	"Parking/internal/domain/auth"
	"Parking/internal/domain/user"
	appErrors "Parking/internal/errors"
	"Parking/internal/pkg"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Authenticate(c *gin.Context) {
	var body contracts.LoginRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	u, err := h.AuthService.Login(ctx, auth.Login{
		Email:    strings.ToLower(strings.TrimSpace(body.Email)),
		Password: body.Password,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	token, expires, err := h.JwtService.GenerateToken(u)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts.TokenResponse{Token: token, ExpiresAt: expires, User: u})
}

// Registration is public so the very first operator can be created. Every
// later call must carry an admin token.
func (h *Handler) Registration(c *gin.Context) {
	var body contracts.RegisterRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	var caller *user.User
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		claims, err := h.JwtService.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			h.respondError(c, err)
			return
		}
		id, err := pkg.ParseID(claims.Subject)
		if err != nil {
			h.respondError(c, appErrors.ErrUnauthorized.WithError(err))
			return
		}
		if caller, err = h.UserService.GetByID(ctx, id); err != nil {
			h.respondError(c, appErrors.ErrUnauthorized.WithError(err))
			return
		}
	}

	u := &user.User{
		Name:     strings.TrimSpace(body.Name),
		Email:    body.Email,
		Phone:    strings.TrimSpace(body.Phone),
		Password: body.Password,
		Role:     user.Role(body.Role),
	}
	if err := h.AuthService.Register(ctx, caller, u); err != nil {
		h.respondError(c, err)
		return
	}

	token, expires, err := h.JwtService.GenerateToken(u)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contracts.TokenResponse{Token: token, ExpiresAt: expires, User: u})
}

func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	u, err := h.UserService.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) UpdateUserPassword(c *gin.Context) {
	var body contracts.PasswordUpdateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.bindError(c, err)
		return
	}
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.UserService.UpdatePassword(c.Request.Context(), userID, body.CurrentPassword, body.NewPassword); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts.MessageResponse{Message: "password updated"})
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.UserService.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users, "total": len(users)})
}

func (h *Handler) UpdateUserRole(c *gin.Context) {
	id, err := h.pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var body contracts.UserRoleUpdateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.bindError(c, err)
		return
	}
	u, err := h.UserService.UpdateRole(c.Request.Context(), id, user.Role(body.Role), body.IsActive)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
