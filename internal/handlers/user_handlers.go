package handlers

import (
	"net/http"

	"crately/internal/common"
	"crately/internal/middleware"
	"crately/internal/models"
	"crately/internal/services"

	"github.com/labstack/echo/v4"
)

// UserHandlers handles user management. Creation, update, deletion and
// invite resets are admin-only; listing is open to all authenticated users
// so share dialogs can name grantees.
type UserHandlers struct {
	userSvc services.UserService
	authSvc services.AuthService
}

func NewUserHandlers(userSvc services.UserService, authSvc services.AuthService) *UserHandlers {
	return &UserHandlers{
		userSvc: userSvc,
		authSvc: authSvc,
	}
}

// ListUsers returns all users with secrets redacted.
func (h *UserHandlers) ListUsers(c echo.Context) error {
	users, err := h.userSvc.List(c.Request().Context())
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"users": users})
}

// GetUser returns one user, redacted.
func (h *UserHandlers) GetUser(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "user id")
	if err != nil {
		return common.RespondError(c, err)
	}

	user, err := h.userSvc.Get(c.Request().Context(), id)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// CreateUser invites a new user. The response carries the one-time invite
// token for the admin to relay; it is never shown again.
func (h *UserHandlers) CreateUser(c echo.Context) error {
	actor, err := middleware.Actor(c)
	if err != nil {
		return common.RespondError(c, err)
	}

	var req services.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}

	user, err := h.userSvc.Create(c.Request().Context(), actor, &req)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

// UpdateUser applies a partial update to name or admin flag.
func (h *UserHandlers) UpdateUser(c echo.Context) error {
	actor, err := middleware.Actor(c)
	if err != nil {
		return common.RespondError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "user id")
	if err != nil {
		return common.RespondError(c, err)
	}

	var patch models.UserPatch
	if err := c.Bind(&patch); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}

	user, err := h.userSvc.Update(c.Request().Context(), actor, id, &patch)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser removes a user and every access grant naming them.
func (h *UserHandlers) DeleteUser(c echo.Context) error {
	actor, err := middleware.Actor(c)
	if err != nil {
		return common.RespondError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "user id")
	if err != nil {
		return common.RespondError(c, err)
	}

	if err := h.userSvc.Delete(c.Request().Context(), actor, id); err != nil {
		return common.RespondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ResetInvite re-arms a user with a fresh invite token, deactivating the
// account and invalidating any previously issued credential.
func (h *UserHandlers) ResetInvite(c echo.Context) error {
	actor, err := middleware.Actor(c)
	if err != nil {
		return common.RespondError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "user id")
	if err != nil {
		return common.RespondError(c, err)
	}

	user, err := h.authSvc.ResetInvite(c.Request().Context(), actor, id)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
