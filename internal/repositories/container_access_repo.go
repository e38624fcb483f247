package repositories

import (
	"context"

	"crately/internal/common"
	"crately/internal/models"
	"crately/internal/store"

	"github.com/google/uuid"
)

type ContainerAccessRepository interface {
	Create(ctx context.Context, grant *models.ContainerAccess) error
	Exists(ctx context.Context, containerID, userID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.ContainerAccess, error)
	ListByContainer(ctx context.Context, containerID uuid.UUID) ([]*models.ContainerAccess, error)
	DeleteByPair(ctx context.Context, containerID, userID uuid.UUID) error
	DeleteByContainer(ctx context.Context, containerID uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

type containerAccessRepo struct {
	db store.Store
}

func NewContainerAccessRepo(db store.Store) ContainerAccessRepository {
	return &containerAccessRepo{db: db}
}

func (r *containerAccessRepo) Create(ctx context.Context, grant *models.ContainerAccess) error {
	if err := r.db.Insert(ctx, store.KindContainerAccess, grant.ID.String(), grant); err != nil {
		return common.Internalf(err, "failed to store access grant")
	}
	return nil
}

func (r *containerAccessRepo) Exists(ctx context.Context, containerID, userID uuid.UUID) (bool, error) {
	count, err := r.db.Count(ctx, store.KindContainerAccess, store.Filter{
		"container_id": containerID,
		"user_id":      userID,
	})
	if err != nil {
		return false, common.Internalf(err, "failed to check access grant")
	}
	return count > 0, nil
}

func (r *containerAccessRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.ContainerAccess, error) {
	var grants []*models.ContainerAccess
	if err := r.db.FindMany(ctx, store.KindContainerAccess, store.Filter{"user_id": userID}, &grants); err != nil {
		return nil, common.Internalf(err, "failed to list access grants")
	}
	return grants, nil
}

func (r *containerAccessRepo) ListByContainer(ctx context.Context, containerID uuid.UUID) ([]*models.ContainerAccess, error) {
	var grants []*models.ContainerAccess
	if err := r.db.FindMany(ctx, store.KindContainerAccess, store.Filter{"container_id": containerID}, &grants); err != nil {
		return nil, common.Internalf(err, "failed to list access grants")
	}
	return grants, nil
}

func (r *containerAccessRepo) DeleteByPair(ctx context.Context, containerID, userID uuid.UUID) error {
	if err := r.db.DeleteMany(ctx, store.KindContainerAccess, store.Filter{
		"container_id": containerID,
		"user_id":      userID,
	}); err != nil {
		return common.Internalf(err, "failed to delete access grant")
	}
	return nil
}

func (r *containerAccessRepo) DeleteByContainer(ctx context.Context, containerID uuid.UUID) error {
	if err := r.db.DeleteMany(ctx, store.KindContainerAccess, store.Filter{"container_id": containerID}); err != nil {
		return common.Internalf(err, "failed to delete access grants for container")
	}
	return nil
}

func (r *containerAccessRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	if err := r.db.DeleteMany(ctx, store.KindContainerAccess, store.Filter{"user_id": userID}); err != nil {
		return common.Internalf(err, "failed to delete access grants for user")
	}
	return nil
}
