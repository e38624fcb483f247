package handlers

import (
	"net/http"

	"crately/internal/common"
	"crately/internal/middleware"
	"crately/internal/models"
	"crately/internal/services"

	"github.com/labstack/echo/v4"
)

// ItemHandlers handles item CRUD, low-stock listing and photo endpoints.
type ItemHandlers struct {
	itemSvc  services.ItemService
	photoSvc services.PhotoService
}

func NewItemHandlers(itemSvc services.ItemService, photoSvc services.PhotoService) *ItemHandlers {
	return &ItemHandlers{
		itemSvc:  itemSvc,
		photoSvc: photoSvc,
	}
}

// ListItems returns every item in a container visible to the caller.
func (h *ItemHandlers) ListItems(c echo.Context) error {
	actor, err := middleware.Actor(c)
	if err != nil {
		return common.RespondError(c, err)
	}

	items, err := h.itemSvc.List(c.Request().Context(), actor)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// ListLowStockItems returns visible items at or below their threshold.
func (h *ItemHandlers) ListLowStockItems(c echo.Context) error {
	actor, err := middleware.Actor(c)
	if err != nil {
		return common.RespondError(c, err)
	}

	items, err := h.itemSvc.ListLowStock(c.Request().Context(), actor)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// CreateItem creates an item inside an existing container.
func (h *ItemHandlers) CreateItem(c echo.Context) error {
	actor, err := middleware.Actor(c)
	if err != nil {
		return common.RespondError(c, err)
	}

	var req services.CreateItemRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}

	item, err := h.itemSvc.Create(c.Request().Context(), actor, &req)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

// GetItem returns one item by id.
func (h *ItemHandlers) GetItem(c echo.Context) error {
	actor, err := middleware.Actor(c)
	if err != nil {
		return common.RespondError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "item id")
	if err != nil {
		return common.RespondError(c, err)
	}

	item, err := h.itemSvc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// UpdateItem applies a partial update; a null category_id clears the
// category reference.
func (h *ItemHandlers) UpdateItem(c echo.Context) error {
	actor, err := middleware.Actor(c)
	if err != nil {
		return common.RespondError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "item id")
	if err != nil {
		return common.RespondError(c, err)
	}

	var patch models.ItemPatch
	if err := c.Bind(&patch); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}

	item, err := h.itemSvc.Update(c.Request().Context(), actor, id, &patch)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// DeleteItem removes an item.
func (h *ItemHandlers) DeleteItem(c echo.Context) error {
	actor, err := middleware.Actor(c)
	if err != nil {
		return common.RespondError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "item id")
	if err != nil {
		return common.RespondError(c, err)
	}

	if err := h.itemSvc.Delete(c.Request().Context(), actor, id); err != nil {
		return common.RespondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadItemPhoto stores the uploaded photo bytes and points the item record
// at the stored object.
func (h *ItemHandlers) UploadItemPhoto(c echo.Context) error {
	actor, err := middleware.Actor(c)
	if err != nil {
		return common.RespondError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "item id")
	if err != nil {
		return common.RespondError(c, err)
	}

	file, err := c.FormFile("photo")
	if err != nil {
		return common.SendValidationError(c, "photo", "photo file is required")
	}
	src, err := file.Open()
	if err != nil {
		return common.RespondError(c, common.Internalf(err, "failed to read upload"))
	}
	defer src.Close()

	objectName := "items/" + id.String()
	if err := h.photoSvc.Upload(c.Request().Context(), objectName, src, file.Size, file.Header.Get("Content-Type")); err != nil {
		return common.RespondError(c, common.Internalf(err, "failed to store photo"))
	}

	patch := models.ItemPatch{Photo: models.Field[string]{Set: true, Value: &objectName}}
	item, err := h.itemSvc.Update(c.Request().Context(), actor, id, &patch)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// GetItemPhoto returns a short-lived URL for the item's photo.
func (h *ItemHandlers) GetItemPhoto(c echo.Context) error {
	actor, err := middleware.Actor(c)
	if err != nil {
		return common.RespondError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "item id")
	if err != nil {
		return common.RespondError(c, err)
	}

	item, err := h.itemSvc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return common.RespondError(c, err)
	}
	if item.Photo == nil {
		return common.RespondError(c, common.NotFoundf("item has no photo"))
	}

	url, err := h.photoSvc.PresignedURL(c.Request().Context(), *item.Photo, photoURLExpiry)
	if err != nil {
		return common.RespondError(c, common.Internalf(err, "failed to sign photo URL"))
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}
