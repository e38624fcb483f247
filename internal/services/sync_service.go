package services

import (
	"context"
	"regexp"

	"crately/internal/common"
	"crately/internal/models"
	"crately/internal/repositories"
)

// SyncResult is the full client-facing state snapshot. Categories are a
// shared vocabulary and are never access-filtered.
type SyncResult struct {
	Containers []*models.Container `json:"containers"`
	Items      []*models.Item      `json:"items"`
	Categories []*models.Category  `json:"categories"`
}

// SearchResult holds name matches from both collections.
type SearchResult struct {
	Containers []*models.Container `json:"containers"`
	Items      []*models.Item      `json:"items"`
}

type SyncService interface {
	Sync(ctx context.Context, user *models.User) (*SyncResult, error)
	Search(ctx context.Context, user *models.User, query string) (*SearchResult, error)
}

type syncService struct {
	containerRepo repositories.ContainerRepository
	itemRepo      repositories.ItemRepository
	categoryRepo  repositories.CategoryRepository
	resolver      AccessResolver
}

func NewSyncService(containerRepo repositories.ContainerRepository, itemRepo repositories.ItemRepository,
	categoryRepo repositories.CategoryRepository, resolver AccessResolver) SyncService {
	return &syncService{
		containerRepo: containerRepo,
		itemRepo:      itemRepo,
		categoryRepo:  categoryRepo,
		resolver:      resolver,
	}
}

func (s *syncService) Sync(ctx context.Context, user *models.User) (*SyncResult, error) {
	containers, err := s.containerRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.itemRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	if !user.IsAdmin {
		visible, err := s.resolver.AccessibleContainers(ctx, user.ID)
		if err != nil {
			return nil, err
		}

		visibleContainers := make([]*models.Container, 0, len(containers))
		for _, c := range containers {
			if _, ok := visible[c.ID]; ok {
				visibleContainers = append(visibleContainers, c)
			}
		}
		containers = visibleContainers

		visibleItems := make([]*models.Item, 0, len(items))
		for _, item := range items {
			if _, ok := visible[item.ContainerID]; ok {
				visibleItems = append(visibleItems, item)
			}
		}
		items = visibleItems
	}

	return &SyncResult{
		Containers: containers,
		Items:      items,
		Categories: categories,
	}, nil
}

// Search matches container and item names case-insensitively against the raw
// query pattern. It is NOT filtered by access scope: any authenticated user
// can discover names regardless of visibility.
func (s *syncService) Search(ctx context.Context, user *models.User, query string) (*SearchResult, error) {
	if err := common.ValidateRequiredString(query, "q"); err != nil {
		return nil, err
	}
	pattern, err := regexp.Compile("(?i)" + query)
	if err != nil {
		return nil, common.Validationf("invalid search pattern")
	}

	containers, err := s.containerRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.itemRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	result := &SearchResult{
		Containers: make([]*models.Container, 0),
		Items:      make([]*models.Item, 0),
	}
	for _, c := range containers {
		if pattern.MatchString(c.Name) {
			result.Containers = append(result.Containers, c)
		}
	}
	for _, item := range items {
		if pattern.MatchString(item.Name) {
			result.Items = append(result.Items, item)
		}
	}
	return result, nil
}
