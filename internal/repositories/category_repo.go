package repositories

import (
	"context"
	"errors"
	"sort"

	"crately/internal/common"
	"crately/internal/models"
	"crately/internal/store"

	"github.com/google/uuid"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	// List returns all categories ordered by sort order ascending.
	List(ctx context.Context) ([]*models.Category, error)
	Update(ctx context.Context, id uuid.UUID, patch *models.CategoryPatch) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
	MaxSortOrder(ctx context.Context) (int, error)
	Count(ctx context.Context) (int64, error)
}

type categoryRepo struct {
	db store.Store
}

func NewCategoryRepo(db store.Store) CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) Create(ctx context.Context, category *models.Category) error {
	if err := r.db.Insert(ctx, store.KindCategories, category.ID.String(), category); err != nil {
		return common.Internalf(err, "failed to store category")
	}
	return nil
}

func (r *categoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category := &models.Category{}
	found, err := r.db.FindOne(ctx, store.KindCategories, store.Filter{"id": id}, category)
	if err != nil {
		return nil, common.Internalf(err, "failed to load category")
	}
	if !found {
		return nil, common.NotFoundf("category not found")
	}
	return category, nil
}

func (r *categoryRepo) List(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	if err := r.db.FindMany(ctx, store.KindCategories, nil, &categories); err != nil {
		return nil, common.Internalf(err, "failed to list categories")
	}
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].SortOrder < categories[j].SortOrder
	})
	return categories, nil
}

func (r *categoryRepo) Update(ctx context.Context, id uuid.UUID, patch *models.CategoryPatch) (*models.Category, error) {
	partial := map[string]any{}
	if patch.Name.Set {
		partial["name"] = patch.Name.Value
	}
	if patch.Icon.Set {
		partial["icon"] = patch.Icon.Value
	}
	if patch.SortOrder.Set {
		partial["order"] = patch.SortOrder.Value
	}
	if len(partial) > 0 {
		if err := r.db.Update(ctx, store.KindCategories, id.String(), partial); err != nil {
			if errors.Is(err, store.ErrNoRecord) {
				return nil, common.NotFoundf("category not found")
			}
			return nil, common.Internalf(err, "failed to update category")
		}
	}
	return r.GetByID(ctx, id)
}

func (r *categoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.DeleteOne(ctx, store.KindCategories, id.String()); err != nil {
		return common.Internalf(err, "failed to delete category")
	}
	return nil
}

// MaxSortOrder scans all categories; deleted orders are never reused, so the
// next order is always max(existing)+1 and gaps are expected.
func (r *categoryRepo) MaxSortOrder(ctx context.Context) (int, error) {
	categories, err := r.List(ctx)
	if err != nil {
		return 0, err
	}
	max := 0
	for _, category := range categories {
		if category.SortOrder > max {
			max = category.SortOrder
		}
	}
	return max, nil
}

func (r *categoryRepo) Count(ctx context.Context) (int64, error) {
	count, err := r.db.Count(ctx, store.KindCategories, nil)
	if err != nil {
		return 0, common.Internalf(err, "failed to count categories")
	}
	return count, nil
}
