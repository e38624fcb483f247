package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"crately/internal/models"
	"crately/internal/repositories"
	"crately/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// testEnv wires real repositories over the in-memory store so service tests
// exercise the same filter and merge semantics as production. Caching is
// disabled (nil cache service).
type testEnv struct {
	db            store.Store
	containerRepo repositories.ContainerRepository
	itemRepo      repositories.ItemRepository
	categoryRepo  repositories.CategoryRepository
	userRepo      repositories.UserRepository
	accessRepo    repositories.ContainerAccessRepository

	resolver     AccessResolver
	authSvc      AuthService
	containerSvc ContainerService
	itemSvc      ItemService
	categorySvc  CategoryService
	userSvc      UserService
	shareSvc     ShareService
	syncSvc      SyncService
}

func newTestEnv() *testEnv {
	db := store.NewMemoryStore()
	env := &testEnv{
		db:            db,
		containerRepo: repositories.NewContainerRepo(db),
		itemRepo:      repositories.NewItemRepo(db),
		categoryRepo:  repositories.NewCategoryRepo(db),
		userRepo:      repositories.NewUserRepo(db),
		accessRepo:    repositories.NewContainerAccessRepo(db),
	}
	env.resolver = NewAccessResolver(env.containerRepo, env.accessRepo, nil)
	env.authSvc = NewAuthService(env.userRepo, nil, "test-secret")
	env.containerSvc = NewContainerService(env.containerRepo, env.itemRepo, env.accessRepo, env.resolver, nil)
	env.itemSvc = NewItemService(env.itemRepo, env.containerRepo, env.categoryRepo, env.resolver)
	env.categorySvc = NewCategoryService(env.categoryRepo, env.itemRepo)
	env.userSvc = NewUserService(env.userRepo, env.accessRepo, env.authSvc, nil)
	env.shareSvc = NewShareService(env.accessRepo, env.containerRepo, env.userRepo, env.authSvc, nil)
	env.syncSvc = NewSyncService(env.containerRepo, env.itemRepo, env.categoryRepo, env.resolver)
	return env
}

func (e *testEnv) addUser(t *testing.T, name, code string, admin bool) *models.User {
	t.Helper()
	user := &models.User{
		ID:        uuid.New(),
		Name:      name,
		Code:      code,
		IsAdmin:   admin,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	assert.NoError(t, e.userRepo.Create(context.Background(), user))
	return user
}

func (e *testEnv) addInvitedUser(t *testing.T, name, token string, expires time.Time) *models.User {
	t.Helper()
	user := &models.User{
		ID:            uuid.New(),
		Name:          name,
		IsActive:      false,
		InviteToken:   token,
		InviteExpires: &expires,
		CreatedAt:     time.Now().UTC(),
	}
	assert.NoError(t, e.userRepo.Create(context.Background(), user))
	return user
}

func (e *testEnv) addContainer(t *testing.T, name string, ownerID uuid.UUID, parentID *uuid.UUID) *models.Container {
	t.Helper()
	container := &models.Container{
		ID:        uuid.New(),
		Name:      name,
		ParentID:  parentID,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}
	assert.NoError(t, e.containerRepo.Create(context.Background(), container))
	return container
}

func (e *testEnv) addItem(t *testing.T, name string, containerID uuid.UUID, quantity, minQuantity int) *models.Item {
	t.Helper()
	item := &models.Item{
		ID:          uuid.New(),
		Name:        name,
		Quantity:    quantity,
		MinQuantity: minQuantity,
		ContainerID: containerID,
		CreatedAt:   time.Now().UTC(),
	}
	assert.NoError(t, e.itemRepo.Create(context.Background(), item))
	return item
}

func (e *testEnv) addGrant(t *testing.T, containerID, userID uuid.UUID) *models.ContainerAccess {
	t.Helper()
	grant := &models.ContainerAccess{
		ID:          uuid.New(),
		ContainerID: containerID,
		UserID:      userID,
		CreatedAt:   time.Now().UTC(),
	}
	assert.NoError(t, e.accessRepo.Create(context.Background(), grant))
	return grant
}

// mapCache is an in-process CacheService for tests that need observable
// cache behavior. Visibility calls are no-ops (always a miss).
type mapCache struct {
	mu      sync.Mutex
	strings map[string]string
}

func newMapCache() *mapCache {
	return &mapCache{strings: map[string]string{}}
}

func (c *mapCache) GetVisibility(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, bool, error) {
	return nil, false, nil
}

func (c *mapCache) SetVisibility(ctx context.Context, userID uuid.UUID, containerIDs []uuid.UUID, ttl time.Duration) error {
	return nil
}

func (c *mapCache) InvalidateVisibility(ctx context.Context, userID uuid.UUID) error { return nil }

func (c *mapCache) InvalidateAllVisibility(ctx context.Context) error { return nil }

func (c *mapCache) SetString(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.strings[key] = value
	return nil
}

func (c *mapCache) GetString(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.strings[key]
	if !ok {
		return "", fmt.Errorf("cache key not found: %s", key)
	}
	return value, nil
}

func (c *mapCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.strings, key)
	return nil
}

func (c *mapCache) Ping(ctx context.Context) error { return nil }

func stringPtr(s string) *string { return &s }

func intPtr(v int) *int { return &v }

func uuidPtr(id uuid.UUID) *uuid.UUID { return &id }
