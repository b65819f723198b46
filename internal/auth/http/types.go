package http

import (
	"context"

	"github.com/devfolio/portfolio-api/internal/auth/domain"
	"github.com/devfolio/portfolio-api/internal/auth/service"
)

type AuthService interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*service.Session, error)
	Login(ctx context.Context, username, password string) (*service.Session, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
}

type Handler struct {
	authService AuthService
}

func New(authService AuthService) *Handler {
	return &Handler{authService: authService}
}

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type changePasswordReq struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}
