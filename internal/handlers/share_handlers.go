package handlers

import (
	"net/http"

	"crately/internal/common"
	"crately/internal/middleware"
	"crately/internal/services"

	"github.com/labstack/echo/v4"
)

// ShareHandlers handles per-container access grants.
type ShareHandlers struct {
	shareSvc services.ShareService
}

func NewShareHandlers(shareSvc services.ShareService) *ShareHandlers {
	return &ShareHandlers{shareSvc: shareSvc}
}

// ListAccess returns the grants on a container. Owner or admin only.
func (h *ShareHandlers) ListAccess(c echo.Context) error {
	actor, err := middleware.Actor(c)
	if err != nil {
		return common.RespondError(c, err)
	}
	containerID, err := common.ValidateUUID(c.Param("id"), "container id")
	if err != nil {
		return common.RespondError(c, err)
	}

	grants, err := h.shareSvc.ListForContainer(c.Request().Context(), actor, containerID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"access": grants})
}

// GrantAccessRequest names the user receiving visibility.
type GrantAccessRequest struct {
	UserID string `json:"user_id"`
}

// GrantAccess gives a user visibility into a container and its descendants.
// Owner or admin only.
func (h *ShareHandlers) GrantAccess(c echo.Context) error {
	actor, err := middleware.Actor(c)
	if err != nil {
		return common.RespondError(c, err)
	}
	containerID, err := common.ValidateUUID(c.Param("id"), "container id")
	if err != nil {
		return common.RespondError(c, err)
	}

	var req GrantAccessRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}
	userID, err := common.ValidateUUID(req.UserID, "user_id")
	if err != nil {
		return common.RespondError(c, err)
	}

	grant, err := h.shareSvc.Grant(c.Request().Context(), actor, containerID, userID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, grant)
}

// RevokeAccess removes a user's grant on a container. Owner or admin only.
func (h *ShareHandlers) RevokeAccess(c echo.Context) error {
	actor, err := middleware.Actor(c)
	if err != nil {
		return common.RespondError(c, err)
	}
	containerID, err := common.ValidateUUID(c.Param("id"), "container id")
	if err != nil {
		return common.RespondError(c, err)
	}
	userID, err := common.ValidateUUID(c.Param("userId"), "user id")
	if err != nil {
		return common.RespondError(c, err)
	}

	if err := h.shareSvc.Revoke(c.Request().Context(), actor, containerID, userID); err != nil {
		return common.RespondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
