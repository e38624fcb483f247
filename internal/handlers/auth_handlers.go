package handlers

import (
	"net/http"

	"crately/internal/common"
	"crately/internal/middleware"
	"crately/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandlers handles login and invite activation.
type AuthHandlers struct {
	authSvc services.AuthService
}

func NewAuthHandlers(authSvc services.AuthService) *AuthHandlers {
	return &AuthHandlers{authSvc: authSvc}
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Code string `json:"code"`
}

// TokenResponse returns a session token with the (redacted) user.
type TokenResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

// Login exchanges a login code for a session token.
func (h *AuthHandlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}
	if req.Code == "" {
		return common.RespondError(c, common.Unauthorizedf("missing credential"))
	}

	user, token, err := h.authSvc.Login(c.Request().Context(), req.Code)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, TokenResponse{Token: token, User: user})
}

// ActivateRequest redeems an invite token with a chosen login code.
type ActivateRequest struct {
	Token string `json:"token"`
	Code  string `json:"code"`
}

// Activate redeems a one-time invite and logs the new user in.
func (h *AuthHandlers) Activate(c echo.Context) error {
	var req ActivateRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}
	if req.Token == "" {
		return common.SendValidationError(c, "token", "token is required")
	}

	user, token, err := h.authSvc.Activate(c.Request().Context(), req.Token, req.Code)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, TokenResponse{Token: token, User: user})
}

// Me returns the calling user, secrets redacted.
func (h *AuthHandlers) Me(c echo.Context) error {
	actor, err := middleware.Actor(c)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, actor.Redacted())
}
