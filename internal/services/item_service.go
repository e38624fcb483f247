package services

import (
	"context"
	"time"

	"crately/internal/common"
	"crately/internal/models"
	"crately/internal/repositories"

	"github.com/google/uuid"
)

// CreateItemRequest carries the fields a caller may set when creating an
// item. Quantity defaults to 1, the low-stock threshold to 0 (disabled).
type CreateItemRequest struct {
	Name        string     `json:"name"`
	Quantity    *int       `json:"quantity"`
	MinQuantity *int       `json:"min_quantity"`
	CategoryID  *uuid.UUID `json:"category_id"`
	Photo       *string    `json:"photo"`
	ContainerID uuid.UUID  `json:"container_id"`
}

type ItemService interface {
	Create(ctx context.Context, actor *models.User, req *CreateItemRequest) (*models.Item, error)
	Get(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Item, error)
	List(ctx context.Context, actor *models.User) ([]*models.Item, error)
	Update(ctx context.Context, actor *models.User, id uuid.UUID, patch *models.ItemPatch) (*models.Item, error)
	Delete(ctx context.Context, actor *models.User, id uuid.UUID) error
	// ListLowStock returns visible items whose quantity has fallen to or
	// below their threshold. Items with threshold 0 never appear.
	ListLowStock(ctx context.Context, actor *models.User) ([]*models.Item, error)
}

type itemService struct {
	itemRepo      repositories.ItemRepository
	containerRepo repositories.ContainerRepository
	categoryRepo  repositories.CategoryRepository
	resolver      AccessResolver
}

func NewItemService(itemRepo repositories.ItemRepository, containerRepo repositories.ContainerRepository,
	categoryRepo repositories.CategoryRepository, resolver AccessResolver) ItemService {
	return &itemService{
		itemRepo:      itemRepo,
		containerRepo: containerRepo,
		categoryRepo:  categoryRepo,
		resolver:      resolver,
	}
}

func (s *itemService) Create(ctx context.Context, actor *models.User, req *CreateItemRequest) (*models.Item, error) {
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return nil, err
	}
	if req.ContainerID == uuid.Nil {
		return nil, common.Validationf("container_id is required")
	}
	if _, err := s.containerRepo.GetByID(ctx, req.ContainerID); err != nil {
		return nil, err
	}
	if req.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity < 0 {
		return nil, common.Validationf("quantity cannot be negative")
	}
	minQuantity := 0
	if req.MinQuantity != nil {
		minQuantity = *req.MinQuantity
	}
	if minQuantity < 0 {
		return nil, common.Validationf("min_quantity cannot be negative")
	}

	item := &models.Item{
		ID:          uuid.New(),
		Name:        req.Name,
		Quantity:    quantity,
		MinQuantity: minQuantity,
		CategoryID:  req.CategoryID,
		Photo:       req.Photo,
		ContainerID: req.ContainerID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *itemService) Get(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireContainerVisible(ctx, actor, item.ContainerID); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *itemService) List(ctx context.Context, actor *models.User) ([]*models.Item, error) {
	items, err := s.itemRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.filterVisible(ctx, actor, items)
}

func (s *itemService) Update(ctx context.Context, actor *models.User, id uuid.UUID, patch *models.ItemPatch) (*models.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireContainerVisible(ctx, actor, item.ContainerID); err != nil {
		return nil, err
	}

	if patch.Name.Set && !patch.Name.Some() {
		return nil, common.Validationf("name cannot be cleared")
	}
	if patch.Quantity.Set {
		if patch.Quantity.Value == nil || *patch.Quantity.Value < 0 {
			return nil, common.Validationf("quantity must be a non-negative integer")
		}
	}
	if patch.MinQuantity.Some() && *patch.MinQuantity.Value < 0 {
		return nil, common.Validationf("min_quantity cannot be negative")
	}
	if patch.ContainerID.Set {
		if patch.ContainerID.Value == nil {
			return nil, common.Validationf("container_id cannot be cleared")
		}
		if _, err := s.containerRepo.GetByID(ctx, *patch.ContainerID.Value); err != nil {
			return nil, err
		}
	}
	if patch.CategoryID.Some() {
		if _, err := s.categoryRepo.GetByID(ctx, *patch.CategoryID.Value); err != nil {
			return nil, err
		}
	}

	return s.itemRepo.Update(ctx, id, patch)
}

func (s *itemService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.requireContainerVisible(ctx, actor, item.ContainerID); err != nil {
		return err
	}
	return s.itemRepo.Delete(ctx, id)
}

func (s *itemService) ListLowStock(ctx context.Context, actor *models.User) ([]*models.Item, error) {
	items, err := s.List(ctx, actor)
	if err != nil {
		return nil, err
	}
	low := make([]*models.Item, 0)
	for _, item := range items {
		if item.MinQuantity > 0 && item.Quantity <= item.MinQuantity {
			low = append(low, item)
		}
	}
	return low, nil
}

func (s *itemService) requireContainerVisible(ctx context.Context, actor *models.User, containerID uuid.UUID) error {
	if actor.IsAdmin {
		return nil
	}
	visible, err := s.resolver.AccessibleContainers(ctx, actor.ID)
	if err != nil {
		return err
	}
	if _, ok := visible[containerID]; !ok {
		return common.Forbiddenf("no access to this item's container")
	}
	return nil
}

func (s *itemService) filterVisible(ctx context.Context, actor *models.User, items []*models.Item) ([]*models.Item, error) {
	if actor.IsAdmin {
		return items, nil
	}
	visible, err := s.resolver.AccessibleContainers(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	filtered := make([]*models.Item, 0, len(items))
	for _, item := range items {
		if _, ok := visible[item.ContainerID]; ok {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}
