package handlers

import (
	"net/http"

	"crately/internal/common"
	"crately/internal/models"
	"crately/internal/services"

	"github.com/labstack/echo/v4"
)

// CategoryHandlers handles the shared category vocabulary.
type CategoryHandlers struct {
	categorySvc services.CategoryService
}

func NewCategoryHandlers(categorySvc services.CategoryService) *CategoryHandlers {
	return &CategoryHandlers{categorySvc: categorySvc}
}

// ListCategories returns all categories ordered by sort order.
func (h *CategoryHandlers) ListCategories(c echo.Context) error {
	categories, err := h.categorySvc.List(c.Request().Context())
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"categories": categories})
}

// CreateCategory appends a category at the end of the sort order.
func (h *CategoryHandlers) CreateCategory(c echo.Context) error {
	var req services.CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}

	category, err := h.categorySvc.Create(c.Request().Context(), &req)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, category)
}

// GetCategory returns one category by id.
func (h *CategoryHandlers) GetCategory(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "category id")
	if err != nil {
		return common.RespondError(c, err)
	}

	category, err := h.categorySvc.Get(c.Request().Context(), id)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, category)
}

// UpdateCategory applies a partial update.
func (h *CategoryHandlers) UpdateCategory(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "category id")
	if err != nil {
		return common.RespondError(c, err)
	}

	var patch models.CategoryPatch
	if err := c.Bind(&patch); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}

	category, err := h.categorySvc.Update(c.Request().Context(), id, &patch)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, category)
}

// DeleteCategory deletes a category, clearing it from every item that
// referenced it.
func (h *CategoryHandlers) DeleteCategory(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "category id")
	if err != nil {
		return common.RespondError(c, err)
	}

	if err := h.categorySvc.Delete(c.Request().Context(), id); err != nil {
		return common.RespondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
