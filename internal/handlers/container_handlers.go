package handlers

import (
	"net/http"
	"time"

	"crately/internal/common"
	"crately/internal/middleware"
	"crately/internal/models"
	"crately/internal/services"

	"github.com/labstack/echo/v4"
)

const photoURLExpiry = 15 * time.Minute

// ContainerHandlers handles container CRUD and photo endpoints.
type ContainerHandlers struct {
	containerSvc services.ContainerService
	photoSvc     services.PhotoService
}

func NewContainerHandlers(containerSvc services.ContainerService, photoSvc services.PhotoService) *ContainerHandlers {
	return &ContainerHandlers{
		containerSvc: containerSvc,
		photoSvc:     photoSvc,
	}
}

// ListContainers returns every container visible to the caller.
func (h *ContainerHandlers) ListContainers(c echo.Context) error {
	actor, err := middleware.Actor(c)
	if err != nil {
		return common.RespondError(c, err)
	}

	containers, err := h.containerSvc.List(c.Request().Context(), actor)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"containers": containers})
}

// CreateContainer creates a container, inheriting ownership from the parent
// when one is given.
func (h *ContainerHandlers) CreateContainer(c echo.Context) error {
	actor, err := middleware.Actor(c)
	if err != nil {
		return common.RespondError(c, err)
	}

	var req services.CreateContainerRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}

	container, err := h.containerSvc.Create(c.Request().Context(), actor, &req)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, container)
}

// GetContainer returns one container by id.
func (h *ContainerHandlers) GetContainer(c echo.Context) error {
	actor, err := middleware.Actor(c)
	if err != nil {
		return common.RespondError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "container id")
	if err != nil {
		return common.RespondError(c, err)
	}

	container, err := h.containerSvc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, container)
}

// UpdateContainer applies a partial update. Keys absent from the payload are
// untouched; keys present as null are cleared.
func (h *ContainerHandlers) UpdateContainer(c echo.Context) error {
	actor, err := middleware.Actor(c)
	if err != nil {
		return common.RespondError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "container id")
	if err != nil {
		return common.RespondError(c, err)
	}

	var patch models.ContainerPatch
	if err := c.Bind(&patch); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}

	container, err := h.containerSvc.Update(c.Request().Context(), actor, id, &patch)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, container)
}

// DeleteContainer deletes an empty container.
func (h *ContainerHandlers) DeleteContainer(c echo.Context) error {
	actor, err := middleware.Actor(c)
	if err != nil {
		return common.RespondError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "container id")
	if err != nil {
		return common.RespondError(c, err)
	}

	if err := h.containerSvc.Delete(c.Request().Context(), actor, id); err != nil {
		return common.RespondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadContainerPhoto stores the uploaded photo bytes and points the
// container record at the stored object.
func (h *ContainerHandlers) UploadContainerPhoto(c echo.Context) error {
	actor, err := middleware.Actor(c)
	if err != nil {
		return common.RespondError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "container id")
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

	objectName := "containers/" + id.String()
	if err := h.photoSvc.Upload(c.Request().Context(), objectName, src, file.Size, file.Header.Get("Content-Type")); err != nil {
		return common.RespondError(c, common.Internalf(err, "failed to store photo"))
	}

	patch := models.ContainerPatch{Photo: models.Field[string]{Set: true, Value: &objectName}}
	container, err := h.containerSvc.Update(c.Request().Context(), actor, id, &patch)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, container)
}

// GetContainerPhoto returns a short-lived URL for the container's photo.
func (h *ContainerHandlers) GetContainerPhoto(c echo.Context) error {
	actor, err := middleware.Actor(c)
	if err != nil {
		return common.RespondError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "container id")
	if err != nil {
		return common.RespondError(c, err)
	}

	container, err := h.containerSvc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return common.RespondError(c, err)
	}
	if container.Photo == nil {
		return common.RespondError(c, common.NotFoundf("container has no photo"))
	}

	url, err := h.photoSvc.PresignedURL(c.Request().Context(), *container.Photo, photoURLExpiry)
	if err != nil {
		return common.RespondError(c, common.Internalf(err, "failed to sign photo URL"))
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}
