package models

import (
	"time"

	"github.com/google/uuid"
)

// ContainerAccess grants a non-owner user visibility into one container node
// and, transitively, its descendants. Duplicates are rejected with a
// pre-insert existence check.
type ContainerAccess struct {
	ID          uuid.UUID `json:"id"`
	ContainerID uuid.UUID `json:"container_id"`
	UserID      uuid.UUID `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}
