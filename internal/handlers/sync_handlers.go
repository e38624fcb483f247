package handlers

import (
	"net/http"

	"crately/internal/common"
	"crately/internal/middleware"
	"crately/internal/services"

	"github.com/labstack/echo/v4"
)

// SyncHandlers handles the full-state sync and name search endpoints.
type SyncHandlers struct {
	syncSvc services.SyncService
}

func NewSyncHandlers(syncSvc services.SyncService) *SyncHandlers {
	return &SyncHandlers{syncSvc: syncSvc}
}

// Sync returns the caller's full visible state: containers and items
// filtered by access, categories unfiltered.
func (h *SyncHandlers) Sync(c echo.Context) error {
	actor, err := middleware.Actor(c)
	if err != nil {
		return common.RespondError(c, err)
	}

	result, err := h.syncSvc.Sync(c.Request().Context(), actor)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Search matches container and item names against the q parameter.
func (h *SyncHandlers) Search(c echo.Context) error {
	actor, err := middleware.Actor(c)
	if err != nil {
		return common.RespondError(c, err)
	}

	result, err := h.syncSvc.Search(c.Request().Context(), actor, c.QueryParam("q"))
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
