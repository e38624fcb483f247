package services

import (
	"context"

	"crately/internal/common"
	"crately/internal/models"
	"crately/internal/repositories"

	"github.com/google/uuid"
)

// CreateCategoryRequest carries the fields a caller may set when creating a
// category. The sort order is always assigned by the service.
type CreateCategoryRequest struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// Categories are a shared vocabulary: every authenticated user sees all of
// them, and any user may manage them.
type CategoryService interface {
	Create(ctx context.Context, req *CreateCategoryRequest) (*models.Category, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
	Update(ctx context.Context, id uuid.UUID, patch *models.CategoryPatch) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	categoryRepo repositories.CategoryRepository
	itemRepo     repositories.ItemRepository
}

func NewCategoryService(categoryRepo repositories.CategoryRepository, itemRepo repositories.ItemRepository) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		itemRepo:     itemRepo,
	}
}

func (s *categoryService) Create(ctx context.Context, req *CreateCategoryRequest) (*models.Category, error) {
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return nil, err
	}
	icon := req.Icon
	if icon == "" {
		icon = models.DefaultCategoryIcon
	}

	maxOrder, err := s.categoryRepo.MaxSortOrder(ctx)
	if err != nil {
		return nil, err
	}

	category := &models.Category{
		ID:        uuid.New(),
		Name:      req.Name,
		Icon:      icon,
		SortOrder: maxOrder + 1,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.categoryRepo.GetByID(ctx, id)
}

func (s *categoryService) List(ctx context.Context) ([]*models.Category, error) {
	return s.categoryRepo.List(ctx)
}

func (s *categoryService) Update(ctx context.Context, id uuid.UUID, patch *models.CategoryPatch) (*models.Category, error) {
	if patch.Name.Set && !patch.Name.Some() {
		return nil, common.Validationf("name cannot be cleared")
	}
	if patch.Icon.Set && !patch.Icon.Some() {
		return nil, common.Validationf("icon cannot be cleared")
	}
	if patch.SortOrder.Set && !patch.SortOrder.Some() {
		return nil, common.Validationf("order cannot be cleared")
	}
	return s.categoryRepo.Update(ctx, id, patch)
}

func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoryRepo.GetByID(ctx, id); err != nil {
		return err
	}

	// Cascade: items keep existing but lose the reference. The category row is
	// only removed once every referencing item has been cleared, so a failed
	// clear never strands an item pointing at a deleted category.
	items, err := s.itemRepo.ListByCategory(ctx, id)
	if err != nil {
		return err
	}
	for _, item := range items {
		patch := &models.ItemPatch{CategoryID: models.Field[uuid.UUID]{Set: true, Value: nil}}
		if _, err := s.itemRepo.Update(ctx, item.ID, patch); err != nil {
			return err
		}
	}

	return s.categoryRepo.Delete(ctx, id)
}
