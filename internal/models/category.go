package models

import "github.com/google/uuid"

// DefaultCategoryIcon is used when a category is created without one.
const DefaultCategoryIcon = "label"

// Category is a shared, ordered tag usable by any item. SortOrder is assigned
// as max(existing)+1 on creation and never renumbered on delete, so gaps are
// normal.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	SortOrder int       `json:"order"`
}

// CategoryPatch is the partial-update payload for a category.
type CategoryPatch struct {
	Name      Field[string] `json:"name"`
	Icon      Field[string] `json:"icon"`
	SortOrder Field[int]    `json:"order"`
}
