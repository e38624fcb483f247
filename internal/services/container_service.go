package services

import (
	"context"
	"log"
	"time"

	"crately/internal/caching"
	"crately/internal/common"
	"crately/internal/models"
	"crately/internal/repositories"

	"github.com/google/uuid"
)

// CreateContainerRequest carries the fields a caller may set on creation.
// Ownership is derived, never supplied: a nested container inherits its
// parent's owner, a root container is owned by the creating user.
type CreateContainerRequest struct {
	Name     string     `json:"name"`
	Photo    *string    `json:"photo"`
	Number   *int       `json:"number"`
	ParentID *uuid.UUID `json:"parent_id"`
}

type ContainerService interface {
	Create(ctx context.Context, actor *models.User, req *CreateContainerRequest) (*models.Container, error)
	Get(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Container, error)
	List(ctx context.Context, actor *models.User) ([]*models.Container, error)
	Update(ctx context.Context, actor *models.User, id uuid.UUID, patch *models.ContainerPatch) (*models.Container, error)
	Delete(ctx context.Context, actor *models.User, id uuid.UUID) error
}

type containerService struct {
	containerRepo repositories.ContainerRepository
	itemRepo      repositories.ItemRepository
	accessRepo    repositories.ContainerAccessRepository
	resolver      AccessResolver
	cacheSvc      caching.CacheService
}

func NewContainerService(containerRepo repositories.ContainerRepository, itemRepo repositories.ItemRepository,
	accessRepo repositories.ContainerAccessRepository, resolver AccessResolver, cacheSvc caching.CacheService) ContainerService {
	return &containerService{
		containerRepo: containerRepo,
		itemRepo:      itemRepo,
		accessRepo:    accessRepo,
		resolver:      resolver,
		cacheSvc:      cacheSvc,
	}
}

func (s *containerService) Create(ctx context.Context, actor *models.User, req *CreateContainerRequest) (*models.Container, error) {
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return nil, err
	}

	ownerID := actor.ID
	if req.ParentID != nil {
		parent, err := s.containerRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		ownerID = parent.OwnerID
	}

	container := &models.Container{
		ID:        uuid.New(),
		Name:      req.Name,
		Photo:     req.Photo,
		Number:    req.Number,
		ParentID:  req.ParentID,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.containerRepo.Create(ctx, container); err != nil {
		return nil, err
	}

	s.invalidateVisibility(ctx)
	return container, nil
}

func (s *containerService) Get(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Container, error) {
	container, err := s.containerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireVisible(ctx, actor, id); err != nil {
		return nil, err
	}
	return container, nil
}

func (s *containerService) List(ctx context.Context, actor *models.User) ([]*models.Container, error) {
	containers, err := s.containerRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin {
		return containers, nil
	}

	visible, err := s.resolver.AccessibleContainers(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	filtered := make([]*models.Container, 0, len(containers))
	for _, c := range containers {
		if _, ok := visible[c.ID]; ok {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

func (s *containerService) Update(ctx context.Context, actor *models.User, id uuid.UUID, patch *models.ContainerPatch) (*models.Container, error) {
	if _, err := s.containerRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.requireVisible(ctx, actor, id); err != nil {
		return nil, err
	}
	if patch.Name.Set && !patch.Name.Some() {
		return nil, common.Validationf("name cannot be cleared")
	}
	if patch.ParentID.Some() {
		if err := s.guardAgainstCycle(ctx, id, *patch.ParentID.Value); err != nil {
			return nil, err
		}
	}

	updated, err := s.containerRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	if patch.ParentID.Set {
		// Reparenting moves a whole subtree between visibility scopes.
		s.invalidateVisibility(ctx)
	}
	return updated, nil
}

func (s *containerService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	if _, err := s.containerRepo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.requireVisible(ctx, actor, id); err != nil {
		return err
	}

	childCount, err := s.containerRepo.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if childCount > 0 {
		return common.Conflictf("container has nested containers")
	}
	itemCount, err := s.itemRepo.CountByContainer(ctx, id)
	if err != nil {
		return err
	}
	if itemCount > 0 {
		return common.Conflictf("container has items")
	}

	if err := s.containerRepo.Delete(ctx, id); err != nil {
		return err
	}
	// Cascade: grants naming the container go with it. A crash between the
	// two deletes leaves orphaned grants, which the resolver skips anyway.
	if err := s.accessRepo.DeleteByContainer(ctx, id); err != nil {
		return err
	}

	s.invalidateVisibility(ctx)
	return nil
}

// guardAgainstCycle refuses a parent change that would make the container its
// own ancestor. Walks up from the proposed parent; the visited set keeps the
// walk finite even on an already-corrupted graph.
func (s *containerService) guardAgainstCycle(ctx context.Context, id, newParentID uuid.UUID) error {
	if newParentID == id {
		return common.Conflictf("container cannot be its own parent")
	}

	visited := map[uuid.UUID]struct{}{}
	current := newParentID
	for {
		if _, seen := visited[current]; seen {
			return common.Conflictf("container hierarchy is cyclic")
		}
		visited[current] = struct{}{}

		ancestor, err := s.containerRepo.GetByID(ctx, current)
		if err != nil {
			return err
		}
		if ancestor.ID == id {
			return common.Conflictf("move would create a containment cycle")
		}
		if ancestor.ParentID == nil {
			return nil
		}
		if *ancestor.ParentID == id {
			return common.Conflictf("move would create a containment cycle")
		}
		current = *ancestor.ParentID
	}
}

func (s *containerService) requireVisible(ctx context.Context, actor *models.User, id uuid.UUID) error {
	if actor.IsAdmin {
		return nil
	}
	visible, err := s.resolver.AccessibleContainers(ctx, actor.ID)
	if err != nil {
		return err
	}
	if _, ok := visible[id]; !ok {
		return common.Forbiddenf("no access to this container")
	}
	return nil
}

func (s *containerService) invalidateVisibility(ctx context.Context) {
	if s.cacheSvc == nil {
		return
	}
	if err := s.cacheSvc.InvalidateAllVisibility(ctx); err != nil {
		log.Printf("WARN: visibility cache invalidation failed: %v", err)
	}
}
