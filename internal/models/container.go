package models

import (
	"time"

	"github.com/google/uuid"
)

// Container is a physical storage unit, optionally nested inside another
// container. The parent graph is a forest: a container is never its own
// ancestor. OwnerID is fixed at creation and inherited from the parent when
// one is given.
type Container struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Photo     *string    `json:"photo,omitempty"`
	Number    *int       `json:"number,omitempty"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	OwnerID   uuid.UUID  `json:"owner_id"`
	CreatedAt time.Time  `json:"created_at"`
}

// ContainerPatch is the partial-update payload for a container. Ownership is
// not patchable; it never changes after creation.
type ContainerPatch struct {
	Name     Field[string]    `json:"name"`
	Photo    Field[string]    `json:"photo"`
	Number   Field[int]       `json:"number"`
	ParentID Field[uuid.UUID] `json:"parent_id"`
}
