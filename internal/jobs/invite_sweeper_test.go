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

func TestSweepExpiredInvites_DoesNotClearTokens(t *testing.T) {
	db := store.NewMemoryStore()
	userRepo := repositories.NewUserRepo(db)
	ctx := context.Background()

	expires := time.Now().Add(-time.Hour)
	invited := &models.User{
		ID:            uuid.New(),
		Name:          "carol",
		IsActive:      false,
		InviteToken:   "tok-carol",
		InviteExpires: &expires,
		CreatedAt:     time.Now().UTC(),
	}
	assert.NoError(t, userRepo.Create(ctx, invited))

	sweeper := NewInviteSweeper(userRepo)
	assert.NoError(t, sweeper.SweepExpiredInvites(ctx))

	// The token survives: a later activation attempt must still be able to
	// report "expired" rather than "not found".
	got, err := userRepo.GetByID(ctx, invited.ID)
	assert.NoError(t, err)
	assert.Equal(t, "tok-carol", got.InviteToken)
	assert.False(t, got.IsActive)
}
