package jobs

import (
	"context"
	"testing"
	"time"

	"crately/internal/models"
	"crately/internal/repositories"
	"crately/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCheckLowStock(t *testing.T) {
	db := store.NewMemoryStore()
	containerRepo := repositories.NewContainerRepo(db)
	itemRepo := repositories.NewItemRepo(db)
	ctx := context.Background()

	container := &models.Container{ID: uuid.New(), Name: "garage", OwnerID: uuid.New(), CreatedAt: time.Now().UTC()}
	assert.NoError(t, containerRepo.Create(ctx, container))

	low := &models.Item{ID: uuid.New(), Name: "screws", Quantity: 2, MinQuantity: 5, ContainerID: container.ID, CreatedAt: time.Now().UTC()}
	ok := &models.Item{ID: uuid.New(), Name: "nails", Quantity: 10, MinQuantity: 5, ContainerID: container.ID, CreatedAt: time.Now().UTC()}
	disabled := &models.Item{ID: uuid.New(), Name: "glue", Quantity: 0, MinQuantity: 0, ContainerID: container.ID, CreatedAt: time.Now().UTC()}
	for _, item := range []*models.Item{low, ok, disabled} {
		assert.NoError(t, itemRepo.Create(ctx, item))
	}

	svc := NewStockAlertService(itemRepo, containerRepo)
	alerts, err := svc.CheckLowStock(ctx)
	assert.NoError(t, err)
	assert.Len(t, alerts, 1)
	assert.Equal(t, low.ID, alerts[0].ItemID)
	assert.Equal(t, "garage", alerts[0].ContainerName)
	assert.Equal(t, 2, alerts[0].Quantity)
	assert.Equal(t, 5, alerts[0].Threshold)
}

func TestCheckLowStock_AtThresholdAlerts(t *testing.T) {
	db := store.NewMemoryStore()
	containerRepo := repositories.NewContainerRepo(db)
	itemRepo := repositories.NewItemRepo(db)
	ctx := context.Background()

	container := &models.Container{ID: uuid.New(), Name: "garage", OwnerID: uuid.New(), CreatedAt: time.Now().UTC()}
	assert.NoError(t, containerRepo.Create(ctx, container))
	item := &models.Item{ID: uuid.New(), Name: "screws", Quantity: 5, MinQuantity: 5, ContainerID: container.ID, CreatedAt: time.Now().UTC()}
	assert.NoError(t, itemRepo.Create(ctx, item))

	svc := NewStockAlertService(itemRepo, containerRepo)
	alerts, err := svc.CheckLowStock(ctx)
	assert.NoError(t, err)
	assert.Len(t, alerts, 1)
}
