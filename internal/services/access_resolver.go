package services

import (
	"context"
	"log"
	"time"

	"crately/internal/caching"
	"crately/internal/repositories"

	"github.com/google/uuid"
)

// visibilityTTL bounds staleness if an invalidation is ever missed.
const visibilityTTL = 5 * time.Minute

// AccessResolver computes the set of containers a non-admin user may see:
// every container the user owns, every container explicitly granted to them,
// and every descendant (at any depth) of those. Admins bypass the resolver
// entirely.
type AccessResolver interface {
	AccessibleContainers(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]struct{}, error)
}

type accessResolver struct {
	containerRepo repositories.ContainerRepository
	accessRepo    repositories.ContainerAccessRepository
	cacheSvc      caching.CacheService
}

// NewAccessResolver creates an access resolver. cacheSvc may be nil, which
// disables visibility caching.
func NewAccessResolver(containerRepo repositories.ContainerRepository, accessRepo repositories.ContainerAccessRepository, cacheSvc caching.CacheService) AccessResolver {
	return &accessResolver{
		containerRepo: containerRepo,
		accessRepo:    accessRepo,
		cacheSvc:      cacheSvc,
	}
}

func (r *accessResolver) AccessibleContainers(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	if r.cacheSvc != nil {
		ids, hit, err := r.cacheSvc.GetVisibility(ctx, userID)
		if err != nil {
			log.Printf("WARN: visibility cache read failed for user %s: %v", userID, err)
		} else if hit {
			visible := make(map[uuid.UUID]struct{}, len(ids))
			for _, id := range ids {
				visible[id] = struct{}{}
			}
			return visible, nil
		}
	}

	containers, err := r.containerRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	// Index children by parent id so each subtree walk is O(descendants)
	// instead of a scan per node.
	exists := make(map[uuid.UUID]struct{}, len(containers))
	children := make(map[uuid.UUID][]uuid.UUID)
	for _, c := range containers {
		exists[c.ID] = struct{}{}
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c.ID)
		}
	}

	// Root access set: owned containers plus explicit grants. Grants naming
	// a container that no longer exists are skipped; they are cascade-delete
	// leftovers and harmless.
	var roots []uuid.UUID
	for _, c := range containers {
		if c.OwnerID == userID {
			roots = append(roots, c.ID)
		}
	}
	grants, err := r.accessRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, g := range grants {
		if _, ok := exists[g.ContainerID]; ok {
			roots = append(roots, g.ContainerID)
		}
	}

	// Breadth-first closure over the children index. The visited check makes
	// termination unconditional even if the stored graph is corrupted into a
	// cycle; a healthy graph is a forest and never revisits.
	visible := make(map[uuid.UUID]struct{}, len(roots))
	queue := make([]uuid.UUID, 0, len(roots))
	for _, root := range roots {
		if _, seen := visible[root]; seen {
			continue
		}
		visible[root] = struct{}{}
		queue = append(queue, root)
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, child := range children[current] {
			if _, seen := visible[child]; seen {
				continue
			}
			visible[child] = struct{}{}
			queue = append(queue, child)
		}
	}

	if r.cacheSvc != nil {
		ids := make([]uuid.UUID, 0, len(visible))
		for id := range visible {
			ids = append(ids, id)
		}
		if err := r.cacheSvc.SetVisibility(ctx, userID, ids, visibilityTTL); err != nil {
			log.Printf("WARN: visibility cache write failed for user %s: %v", userID, err)
		}
	}

	return visible, nil
}
