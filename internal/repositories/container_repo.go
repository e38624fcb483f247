package repositories

import (
	"context"
	"errors"

	"crately/internal/common"
	"crately/internal/models"
	"crately/internal/store"

	"github.com/google/uuid"
)

type ContainerRepository interface {
	Create(ctx context.Context, container *models.Container) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Container, error)
	List(ctx context.Context) ([]*models.Container, error)
	Update(ctx context.Context, id uuid.UUID, patch *models.ContainerPatch) (*models.Container, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountChildren(ctx context.Context, parentID uuid.UUID) (int64, error)
}

type containerRepo struct {
	db store.Store
}

func NewContainerRepo(db store.Store) ContainerRepository {
	return &containerRepo{db: db}
}

func (r *containerRepo) Create(ctx context.Context, container *models.Container) error {
	if err := r.db.Insert(ctx, store.KindContainers, container.ID.String(), container); err != nil {
		return common.Internalf(err, "failed to store container")
	}
	return nil
}

func (r *containerRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Container, error) {
	container := &models.Container{}
	found, err := r.db.FindOne(ctx, store.KindContainers, store.Filter{"id": id}, container)
	if err != nil {
		return nil, common.Internalf(err, "failed to load container")
	}
	if !found {
		return nil, common.NotFoundf("container not found")
	}
	return container, nil
}

func (r *containerRepo) List(ctx context.Context) ([]*models.Container, error) {
	var containers []*models.Container
	if err := r.db.FindMany(ctx, store.KindContainers, nil, &containers); err != nil {
		return nil, common.Internalf(err, "failed to list containers")
	}
	return containers, nil
}

func (r *containerRepo) Update(ctx context.Context, id uuid.UUID, patch *models.ContainerPatch) (*models.Container, error) {
	partial := map[string]any{}
	if patch.Name.Set {
		partial["name"] = patch.Name.Value
	}
	if patch.Photo.Set {
		partial["photo"] = patch.Photo.Value
	}
	if patch.Number.Set {
		partial["number"] = patch.Number.Value
	}
	if patch.ParentID.Set {
		partial["parent_id"] = patch.ParentID.Value
	}
	if len(partial) > 0 {
		if err := r.db.Update(ctx, store.KindContainers, id.String(), partial); err != nil {
			if errors.Is(err, store.ErrNoRecord) {
				return nil, common.NotFoundf("container not found")
			}
			return nil, common.Internalf(err, "failed to update container")
		}
	}
	return r.GetByID(ctx, id)
}

func (r *containerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.DeleteOne(ctx, store.KindContainers, id.String()); err != nil {
		return common.Internalf(err, "failed to delete container")
	}
	return nil
}

func (r *containerRepo) CountChildren(ctx context.Context, parentID uuid.UUID) (int64, error) {
	count, err := r.db.Count(ctx, store.KindContainers, store.Filter{"parent_id": parentID})
	if err != nil {
		return 0, common.Internalf(err, "failed to count child containers")
	}
	return count, nil
}
