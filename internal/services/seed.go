package services

import (
	"context"
	"log"
	"time"

	"crately/internal/models"
	"crately/internal/repositories"

	"github.com/google/uuid"
)

// defaultAdminCode is the bootstrap login code for the first admin account.
// Meant to be changed via a reset-invite cycle after first login.
const defaultAdminCode = "0000"

var defaultCategories = []struct {
	Name string
	Icon string
}{
	{"Tools", "build"},
	{"Electronics", "memory"},
	{"Clothing", "checkroom"},
	{"Documents", "description"},
	{"Kitchen", "kitchen"},
}

// SeedDefaults makes a fresh store usable: one active admin and a starter
// category set. It only ever writes into an empty collection, so restarts
// are no-ops.
func SeedDefaults(ctx context.Context, userRepo repositories.UserRepository, categoryRepo repositories.CategoryRepository) error {
	userCount, err := userRepo.Count(ctx)
	if err != nil {
		return err
	}
	if userCount == 0 {
		admin := &models.User{
			ID:        uuid.New(),
			Name:      "Admin",
			Code:      defaultAdminCode,
			IsAdmin:   true,
			IsActive:  true,
			CreatedAt: time.Now().UTC(),
		}
		if err := userRepo.Create(ctx, admin); err != nil {
			return err
		}
		log.Printf("Seeded default admin user %s (code %s)", admin.ID, defaultAdminCode)
	}

	categoryCount, err := categoryRepo.Count(ctx)
	if err != nil {
		return err
	}
	if categoryCount == 0 {
		for i, c := range defaultCategories {
			category := &models.Category{
				ID:        uuid.New(),
				Name:      c.Name,
				Icon:      c.Icon,
				SortOrder: i + 1,
			}
			if err := categoryRepo.Create(ctx, category); err != nil {
				return err
			}
		}
		log.Printf("Seeded %d default categories", len(defaultCategories))
	}

	return nil
}
