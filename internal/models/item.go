package models

import (
	"time"

	"github.com/google/uuid"
)

// Item is a tracked physical object stored inside exactly one container.
// MinQuantity is the low-stock threshold; zero disables alerting.
type Item struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Quantity    int        `json:"quantity"`
	MinQuantity int        `json:"min_quantity"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	Photo       *string    `json:"photo,omitempty"`
	ContainerID uuid.UUID  `json:"container_id"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ItemPatch is the partial-update payload for an item.
type ItemPatch struct {
	Name        Field[string]    `json:"name"`
	Quantity    Field[int]       `json:"quantity"`
	MinQuantity Field[int]       `json:"min_quantity"`
	CategoryID  Field[uuid.UUID] `json:"category_id"`
	Photo       Field[string]    `json:"photo"`
	ContainerID Field[uuid.UUID] `json:"container_id"`
}
