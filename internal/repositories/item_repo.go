package repositories

import (
	"context"
	"errors"

	"crately/internal/common"
	"crately/internal/models"
	"crately/internal/store"

	"github.com/google/uuid"
)

type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	List(ctx context.Context) ([]*models.Item, error)
	ListByContainer(ctx context.Context, containerID uuid.UUID) ([]*models.Item, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*models.Item, error)
	Update(ctx context.Context, id uuid.UUID, patch *models.ItemPatch) (*models.Item, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountByContainer(ctx context.Context, containerID uuid.UUID) (int64, error)
}

type itemRepo struct {
	db store.Store
}

func NewItemRepo(db store.Store) ItemRepository {
	return &itemRepo{db: db}
}

func (r *itemRepo) Create(ctx context.Context, item *models.Item) error {
	if err := r.db.Insert(ctx, store.KindItems, item.ID.String(), item); err != nil {
		return common.Internalf(err, "failed to store item")
	}
	return nil
}

func (r *itemRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	item := &models.Item{}
	found, err := r.db.FindOne(ctx, store.KindItems, store.Filter{"id": id}, item)
	if err != nil {
		return nil, common.Internalf(err, "failed to load item")
	}
	if !found {
		return nil, common.NotFoundf("item not found")
	}
	return item, nil
}

func (r *itemRepo) List(ctx context.Context) ([]*models.Item, error) {
	var items []*models.Item
	if err := r.db.FindMany(ctx, store.KindItems, nil, &items); err != nil {
		return nil, common.Internalf(err, "failed to list items")
	}
	return items, nil
}

func (r *itemRepo) ListByContainer(ctx context.Context, containerID uuid.UUID) ([]*models.Item, error) {
	var items []*models.Item
	if err := r.db.FindMany(ctx, store.KindItems, store.Filter{"container_id": containerID}, &items); err != nil {
		return nil, common.Internalf(err, "failed to list items by container")
	}
	return items, nil
}

func (r *itemRepo) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*models.Item, error) {
	var items []*models.Item
	if err := r.db.FindMany(ctx, store.KindItems, store.Filter{"category_id": categoryID}, &items); err != nil {
		return nil, common.Internalf(err, "failed to list items by category")
	}
	return items, nil
}

func (r *itemRepo) Update(ctx context.Context, id uuid.UUID, patch *models.ItemPatch) (*models.Item, error) {
	partial := map[string]any{}
	if patch.Name.Set {
		partial["name"] = patch.Name.Value
	}
	if patch.Quantity.Set {
		partial["quantity"] = patch.Quantity.Value
	}
	if patch.MinQuantity.Set {
		partial["min_quantity"] = patch.MinQuantity.Value
	}
	if patch.CategoryID.Set {
		partial["category_id"] = patch.CategoryID.Value
	}
	if patch.Photo.Set {
		partial["photo"] = patch.Photo.Value
	}
	if patch.ContainerID.Set {
		partial["container_id"] = patch.ContainerID.Value
	}
	if len(partial) > 0 {
		if err := r.db.Update(ctx, store.KindItems, id.String(), partial); err != nil {
			if errors.Is(err, store.ErrNoRecord) {
				return nil, common.NotFoundf("item not found")
			}
			return nil, common.Internalf(err, "failed to update item")
		}
	}
	return r.GetByID(ctx, id)
}

func (r *itemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.DeleteOne(ctx, store.KindItems, id.String()); err != nil {
		return common.Internalf(err, "failed to delete item")
	}
	return nil
}

func (r *itemRepo) CountByContainer(ctx context.Context, containerID uuid.UUID) (int64, error) {
	count, err := r.db.Count(ctx, store.KindItems, store.Filter{"container_id": containerID})
	if err != nil {
		return 0, common.Internalf(err, "failed to count items")
	}
	return count, nil
}
