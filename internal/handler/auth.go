package handler

import (
	"github.com/blockitin/blockitin-ai/internal/errs"
	"github.com/blockitin/blockitin-ai/internal/middleware"
	"github.com/blockitin/blockitin-ai/internal/model"
	"github.com/blockitin/blockitin-ai/internal/server"
	"github.com/blockitin/blockitin-ai/internal/service"
	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	Handler
	auth *service.AuthService
}

func NewAuthHandler(s *server.Server, auth *service.AuthService) *AuthHandler {
	return &AuthHandler{
		Handler: NewHandler(s),
		auth:    auth,
	}
}

func (h *AuthHandler) Register(c echo.Context, p *model.RegisterPayload) (*model.AuthResult, error) {
	return h.auth.Register(c.Request().Context(), p)
}

func (h *AuthHandler) Login(c echo.Context, p *model.LoginPayload) (*model.AuthResult, error) {
	return h.auth.Login(c.Request().Context(), p)
}

func (h *AuthHandler) Profile(c echo.Context, _ *model.EmptyPayload) (*model.ProfileResult, error) {
	user := middleware.GetUser(c)
	if user == nil {
		return nil, errs.NewUnauthorizedError("Access token required", true)
	}
	return h.auth.Profile(c.Request().Context(), user.ID)
}
